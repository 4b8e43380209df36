package host_test

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/assembly"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/errors"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/extension"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/filesystem"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/host"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/markermod"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/merge"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/patcher"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/patchtarget"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/state"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/types"
)

const (
	moduleDir  = "/ext/harmony-patcher/dist"
	gameDir    = "/games/Game"
	stagingDir = "/staging"
)

type recordingPatcher struct {
	runs   []patcher.Invocation
	result error
}

func (r *recordingPatcher) Run(_ context.Context, inv patcher.Invocation) error {
	r.runs = append(r.runs, inv)
	return r.result
}

type env struct {
	fs      types.FS
	store   *state.Store
	patcher *recordingPatcher
	host    *host.Host
}

func newEnv(t *testing.T, target bool) *env {
	t.Helper()
	fsys := filesystem.NewMemory()
	write := func(path string) {
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, fsys.WriteFile(path, []byte(filepath.Base(path)), 0644))
	}
	for _, name := range []string{"0Harmony.dll", "System.Core.dll", "System.Runtime.Serialization.dll", "UnityEngine.dll"} {
		write(filepath.Join(moduleDir, name))
	}
	write(filepath.Join(gameDir, "Game_Data/Managed/Assembly-CSharp.dll"))
	write(filepath.Join(gameDir, "Game_Data/Managed/UnityEngine.dll"))

	store, err := state.Open(fsys, "/data/state.yaml")
	require.NoError(t, err)

	game := types.Game{ID: "game", Name: "Game", ExtensionPath: "/ext/game-game"}
	if target {
		game.Details = map[string]interface{}{
			patchtarget.DetailsKey: map[string]interface{}{
				"dataPath":   "Game_Data/Managed",
				"entryPoint": "Game.Main::Start",
				"modsPath":   "Mods",
			},
		}
	}
	store.Update(func(data *types.Snapshot) {
		data.Games = map[string]types.Game{"game": game}
		data.Profiles = map[string]types.Profile{"p1": {ID: "p1", GameID: "game", Name: "My:Profile/1"}}
		data.Discovered = map[string]types.DiscoveryResult{"game": {Path: gameDir}}
		data.InstallPaths = map[string]string{"game": "/mods/game"}
	})
	require.NoError(t, store.Activate("p1"))

	p := &recordingPatcher{}
	h := host.New(store, fsys, stagingDir)
	require.NoError(t, extension.Init(h, extension.Deps{
		Snapshots:  store,
		Dispatcher: store,
		FS:         fsys,
		Patcher:    p,
		ModuleDir:  moduleDir,
	}))

	return &env{fs: fsys, store: store, patcher: p, host: h}
}

func TestDeploy_EndToEnd(t *testing.T) {
	e := newEnv(t, true)
	markerID := "Vortex Harmony Mod (My_Profile_1)"
	mergeDir := filepath.Join(stagingDir, "game", markermod.ModType)

	report, err := e.host.Deploy(context.Background(), "p1", nil)
	require.NoError(t, err)

	// marker mod created, enabled and carrying its sentinel
	snap := e.store.Snapshot()
	mod, ok := snap.Mod("game", markerID)
	require.True(t, ok)
	assert.Equal(t, markermod.ModType, mod.Type)
	enabled, recorded := snap.ModEnabled("p1", markerID)
	assert.True(t, recorded)
	assert.True(t, enabled)
	sentinel := filepath.Join("/mods/game", markerID, markermod.SentinelFile)
	exists, err := filesystem.Exists(e.fs, sentinel)
	require.NoError(t, err)
	assert.True(t, exists)

	// merge ran once on the staged assembly
	require.Len(t, report.Merges, 1)
	assert.Equal(t, host.MergeResult{ModType: markermod.ModType, MergeDir: mergeDir, Triggers: []string{sentinel}}, report.Merges[0])
	require.Len(t, e.patcher.runs, 1)
	assert.Equal(t, filepath.Join(mergeDir, "Game_Data/Managed/Assembly-CSharp.dll"), e.patcher.runs[0].TargetAssembly)
	assert.Equal(t, "/ext/game-game", e.patcher.runs[0].ExtensionRoot)

	staged, err := assembly.ListNames(e.fs, filepath.Join(mergeDir, "Game_Data/Managed"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Assembly-CSharp.dll", "0Harmony.dll", "System.Runtime.Serialization.dll"}, staged)

	// a second deployment refreshes instead of creating again
	_, err = e.host.Deploy(context.Background(), "p1", nil)
	require.NoError(t, err)
	assert.Len(t, e.store.Snapshot().Mods["game"], 1)
	assert.Len(t, e.patcher.runs, 2)
}

func TestDeploy_UserOptOut(t *testing.T) {
	e := newEnv(t, true)
	markerID := markermod.ModID("My:Profile/1")

	_, err := e.host.Deploy(context.Background(), "p1", nil)
	require.NoError(t, err)
	require.Len(t, e.patcher.runs, 1)

	e.store.SetModEnabled("p1", markerID, false)

	report, err := e.host.Deploy(context.Background(), "p1", nil)
	require.NoError(t, err)
	assert.Empty(t, report.Merges)
	assert.Len(t, e.patcher.runs, 1, "patcher must not run for a disabled marker mod")

	enabled, recorded := e.store.Snapshot().ModEnabled("p1", markerID)
	assert.True(t, recorded)
	assert.False(t, enabled)
}

func TestDeploy_NotATarget(t *testing.T) {
	e := newEnv(t, false)

	report, err := e.host.Deploy(context.Background(), "p1", nil)
	require.NoError(t, err)
	assert.Empty(t, report.Merges)
	assert.Empty(t, e.patcher.runs)
	assert.Empty(t, e.store.Snapshot().Mods)
}

func TestDeploy_UserCancelIsSuccess(t *testing.T) {
	e := newEnv(t, true)
	e.patcher.result = patcher.ErrUserCanceled

	_, err := e.host.Deploy(context.Background(), "p1", nil)
	assert.NoError(t, err)
}

func TestDeploy_PatcherFailurePropagates(t *testing.T) {
	e := newEnv(t, true)
	e.patcher.result = stderrors.New("bad entry point")

	_, err := e.host.Deploy(context.Background(), "p1", nil)
	assert.EqualError(t, err, "bad entry point")
}

func TestDeploy_UnknownProfile(t *testing.T) {
	e := newEnv(t, true)

	_, err := e.host.Deploy(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestDeploy_TriggerFromPreviousDeployment(t *testing.T) {
	fsys := filesystem.NewMemory()
	store, err := state.Open(fsys, "/data/state.yaml")
	require.NoError(t, err)
	store.Update(func(data *types.Snapshot) {
		data.Games = map[string]types.Game{"g": {ID: "g"}}
		data.Profiles = map[string]types.Profile{"p": {ID: "p", GameID: "g"}}
		data.Discovered = map[string]types.DiscoveryResult{"g": {Path: "/games/g"}}
	})

	h := host.New(store, fsys, stagingDir)
	require.NoError(t, h.RegisterModType(extension.ModType{Name: "custom"}))

	var triggers []string
	require.NoError(t, h.RegisterMerge(extension.MergeRegistration{
		ModType: "custom",
		CanMerge: func(types.Game, types.DiscoveryResult) (*merge.Filter, bool) {
			return &merge.Filter{Match: func(p string) bool { return filepath.Ext(p) == ".merge" }}, true
		},
		Merge: func(_ context.Context, file, _ string) error {
			triggers = append(triggers, file)
			return nil
		},
	}))

	report, err := h.Deploy(context.Background(), "p", types.Deployment{
		"custom": {
			{RelPath: "a.merge", Source: "/mods/a/a.merge"},
			{RelPath: "b.txt", Source: "/mods/a/b.txt"},
			{RelPath: "a.merge", Source: "/mods/a/a.merge"},
		},
	})
	require.NoError(t, err)
	require.Len(t, report.Merges, 1)
	assert.Equal(t, []string{"/mods/a/a.merge"}, triggers)
}

func TestRegisterMerge_UnknownModType(t *testing.T) {
	h := host.New(nil, filesystem.NewMemory(), stagingDir)
	err := h.RegisterMerge(extension.MergeRegistration{ModType: "ghost"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestWillDeployHookFailureStopsDeployment(t *testing.T) {
	fsys := filesystem.NewMemory()
	store, err := state.Open(fsys, "/data/state.yaml")
	require.NoError(t, err)

	h := host.New(store, fsys, stagingDir)
	hookErr := stderrors.New("hook failed")
	require.NoError(t, h.OnWillDeploy("failing", func(context.Context, string, types.Deployment) error {
		return hookErr
	}))

	_, err = h.Deploy(context.Background(), "p", nil)
	assert.ErrorIs(t, err, hookErr)
}
