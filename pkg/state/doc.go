// Package state is a file-backed stand-in for the mod manager's state store.
//
// The store keeps the games, profiles, discoveries and mod registry the
// patcher integration reads, persisted as a single YAML document. It hands
// out read-only snapshots and accepts the three dispatches the integration
// issues. Nothing is written to disk until Save is called.
package state
