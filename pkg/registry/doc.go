// Package registry provides a generic, thread-safe registry keyed by name.
// The host keeps the mod types, merges and deploy hooks contributed by
// extensions in registries of this kind.
package registry
