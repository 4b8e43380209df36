// Package filesystem provides implementations of types.FS: the OS
// filesystem used at runtime and an afero-backed one used by tests, plus the
// copy and sentinel helpers the deployer builds on.
package filesystem
