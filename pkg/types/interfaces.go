package types

import (
	"context"
	"io/fs"
)

// FS is the filesystem interface required for deployment operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error

	// Lstat does not follow symlinks. Implementations without symlink
	// support may fall back to Stat.
	Lstat(name string) (fs.FileInfo, error)
}

// SnapshotProvider hands out read-only views of the host's state.
type SnapshotProvider interface {
	Snapshot() *Snapshot
}

// AttributeUpsert sets a single mod attribute. Applying the same upsert twice
// leaves the mod unchanged.
type AttributeUpsert struct {
	Key   string
	Value interface{}
}

// CreateResult is delivered exactly once on the channel returned by
// Dispatcher.CreateMod.
type CreateResult struct {
	ModID string
	Err   error
}

// Dispatcher is the write side of the host's mod registry. Attribute and
// enable updates are fire-and-forget; only creation reports an outcome.
type Dispatcher interface {
	SetModAttributes(gameID, modID string, upserts []AttributeUpsert)
	SetModEnabled(profileID, modID string, enabled bool)
	CreateMod(ctx context.Context, gameID string, mod Mod) <-chan CreateResult
}
