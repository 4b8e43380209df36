package assembly

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/errors"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/filesystem"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/types"
)

const (
	moduleDir  = "/vortex/modules/harmony-patcher/dist"
	stageDir   = "/staging/Game_Data/Managed"
	runtimeDir = "/games/goose/Game_Data/Managed"
)

// faultyFS fails writes and removals of selected paths. Paths in truncate
// get half of their content written before the write fails.
type faultyFS struct {
	types.FS
	failWrite  map[string]error
	truncate   map[string]error
	failRemove map[string]error
}

func (f *faultyFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if err, ok := f.failWrite[name]; ok {
		return err
	}
	if err, ok := f.truncate[name]; ok {
		if werr := f.FS.WriteFile(name, data[:len(data)/2], perm); werr != nil {
			return werr
		}
		return err
	}
	return f.FS.WriteFile(name, data, perm)
}

func (f *faultyFS) Remove(name string) error {
	if err, ok := f.failRemove[name]; ok {
		return err
	}
	return f.FS.Remove(name)
}

func seed(t *testing.T, fsys types.FS, dir string, names ...string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(dir, 0755))
	for _, name := range names {
		require.NoError(t, fsys.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
}

func assertMissing(t *testing.T, fsys types.FS, paths ...string) {
	t.Helper()
	for _, p := range paths {
		ok, err := filesystem.Exists(fsys, p)
		require.NoError(t, err)
		assert.False(t, ok, "%s should not exist", p)
	}
}

func TestDeploy_CopiesAll(t *testing.T) {
	mem := filesystem.NewMemory()
	seed(t, mem, moduleDir, "0Harmony.dll", "Mono.Cecil.dll")
	seed(t, mem, stageDir)

	d := NewDeployer(mem, moduleDir)
	require.NoError(t, d.Deploy(context.Background(), []string{"0Harmony.dll", "Mono.Cecil.dll"}, stageDir))

	data, err := mem.ReadFile(filepath.Join(stageDir, "0Harmony.dll"))
	require.NoError(t, err)
	assert.Equal(t, []byte("0Harmony.dll"), data)

	_, err = mem.Stat(filepath.Join(stageDir, "Mono.Cecil.dll"))
	require.NoError(t, err)
}

func TestDeploy_RollsBackOnFailure(t *testing.T) {
	mem := filesystem.NewMemory()
	seed(t, mem, moduleDir, "A.dll", "B.dll", "C.dll", "D.dll")
	seed(t, mem, stageDir)

	copyErr := stderrors.New("disk full")
	fsys := &faultyFS{
		FS:        mem,
		failWrite: map[string]error{filepath.Join(stageDir, "C.dll"): copyErr},
	}

	err := NewDeployer(fsys, moduleDir).Deploy(context.Background(), []string{"A.dll", "B.dll", "C.dll", "D.dll"}, stageDir)

	require.Error(t, err)
	assert.ErrorIs(t, err, copyErr)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAssemblyCopy))
	assert.Equal(t, "C.dll", errors.GetErrorDetails(err)["assembly"])
	assertMissing(t, mem,
		filepath.Join(stageDir, "A.dll"),
		filepath.Join(stageDir, "B.dll"),
		filepath.Join(stageDir, "C.dll"),
		filepath.Join(stageDir, "D.dll"),
	)
}

func TestDeploy_RemovesPartialCopy(t *testing.T) {
	mem := filesystem.NewMemory()
	seed(t, mem, moduleDir, "A.dll", "B.dll", "C.dll")
	seed(t, mem, stageDir)
	seed(t, mem, runtimeDir)

	fsys := &faultyFS{
		FS:       mem,
		truncate: map[string]error{filepath.Join(stageDir, "B.dll"): syscall.ENOSPC},
	}
	d := NewDeployer(fsys, moduleDir)

	_, err := d.DeployMissing(context.Background(), stageDir, runtimeDir)

	require.Error(t, err)
	assert.ErrorIs(t, err, syscall.ENOSPC)
	assertMissing(t, mem,
		filepath.Join(stageDir, "A.dll"),
		filepath.Join(stageDir, "B.dll"),
	)

	// a later attempt still sees every assembly as missing
	again, err := d.Missing(stageDir, runtimeDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.dll", "B.dll", "C.dll"}, again)
}

func TestDeploy_CleanupFailureKeepsOriginalError(t *testing.T) {
	mem := filesystem.NewMemory()
	seed(t, mem, moduleDir, "A.dll", "B.dll", "C.dll")
	seed(t, mem, stageDir)

	copyErr := stderrors.New("permission denied")
	removeErr := stderrors.New("file locked")
	fsys := &faultyFS{
		FS:         mem,
		failWrite:  map[string]error{filepath.Join(stageDir, "C.dll"): copyErr},
		failRemove: map[string]error{filepath.Join(stageDir, "A.dll"): removeErr},
	}

	err := NewDeployer(fsys, moduleDir).Deploy(context.Background(), []string{"A.dll", "B.dll", "C.dll"}, stageDir)

	require.Error(t, err)
	assert.ErrorIs(t, err, copyErr)
	assert.NotErrorIs(t, err, removeErr)
	// each removal is independent, B is still cleaned up
	assertMissing(t, mem, filepath.Join(stageDir, "B.dll"))
}

func TestDeploy_FirstItemFails(t *testing.T) {
	mem := filesystem.NewMemory()
	seed(t, mem, moduleDir, "B.dll")
	seed(t, mem, stageDir)

	err := NewDeployer(mem, moduleDir).Deploy(context.Background(), []string{"A.dll", "B.dll"}, stageDir)

	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assertMissing(t, mem, filepath.Join(stageDir, "B.dll"))
}

func TestDeploy_CancelledContextRollsBack(t *testing.T) {
	mem := filesystem.NewMemory()
	seed(t, mem, moduleDir, "A.dll")
	seed(t, mem, stageDir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDeployer(mem, moduleDir).Deploy(ctx, []string{"A.dll"}, stageDir)

	assert.ErrorIs(t, err, context.Canceled)
	assertMissing(t, mem, filepath.Join(stageDir, "A.dll"))
}

func TestDeployMissing_IsIdempotent(t *testing.T) {
	mem := filesystem.NewMemory()
	seed(t, mem, moduleDir, "0Harmony.dll", "System.Core.dll", "System.Runtime.Serialization.dll", "UnityEngine.dll")
	seed(t, mem, stageDir, "Assembly-CSharp.dll")
	seed(t, mem, runtimeDir, "Assembly-CSharp.dll", "UnityEngine.dll")

	d := NewDeployer(mem, moduleDir)

	copied, err := d.DeployMissing(context.Background(), stageDir, runtimeDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"0Harmony.dll", "System.Runtime.Serialization.dll"}, copied)

	again, err := d.Missing(stageDir, runtimeDir)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestMissing_ListingErrors(t *testing.T) {
	mem := filesystem.NewMemory()
	seed(t, mem, stageDir)
	seed(t, mem, runtimeDir)

	_, err := NewDeployer(mem, moduleDir).Missing(stageDir, runtimeDir)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAssemblyList))
}

func TestLedger(t *testing.T) {
	l := newLedger()
	assert.NotEmpty(t, l.ID)

	l.Record("/a")
	l.Record("/b")
	paths := l.Paths()
	assert.Equal(t, []string{"/a", "/b"}, paths)

	paths[0] = "/mutated"
	assert.Equal(t, "/a", l.Paths()[0])
}
