// Package paths provides centralized path handling for the patcher
// integration. It follows the XDG Base Directory specification and lets
// each directory be overridden through the environment.
package paths
