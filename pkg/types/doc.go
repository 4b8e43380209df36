// Package types defines the core types and interfaces shared by the patcher
// integration: the filesystem abstraction, the host's game, profile and mod
// records, the read-only host Snapshot and the Dispatcher used for writes.
package types
