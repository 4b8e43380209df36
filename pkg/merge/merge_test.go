package merge_test

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/assembly"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/errors"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/filesystem"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/merge"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/patcher"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/patchtarget"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/types"
)

const (
	moduleDir = "/ext/harmony-patcher/dist"
	gameDir   = "/games/Game"
	mergeDir  = "/stage"
)

// MockPatcher implements patcher.Patcher for testing
type MockPatcher struct {
	mock.Mock
}

func (m *MockPatcher) Run(ctx context.Context, inv patcher.Invocation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

type staticSnapshots struct {
	snap *types.Snapshot
}

func (s staticSnapshots) Snapshot() *types.Snapshot { return s.snap }

func patchDetails() map[string]interface{} {
	return map[string]interface{}{
		patchtarget.DetailsKey: map[string]interface{}{
			"dataPath":   "Game_Data/Managed",
			"entryPoint": "Game.Main::Start",
			"modsPath":   "Mods",
			"injectVIGO": true,
		},
	}
}

func newSnapshot(details map[string]interface{}) *types.Snapshot {
	return &types.Snapshot{
		ActiveProfileID: "p1",
		CurrentGameID:   "game",
		Games: map[string]types.Game{
			"game": {ID: "game", Name: "Game", ExtensionPath: "/ext/game-game", Details: details},
		},
		Profiles: map[string]types.Profile{
			"p1": {ID: "p1", GameID: "game", Name: "Default"},
		},
		Discovered: map[string]types.DiscoveryResult{"game": {Path: gameDir}},
	}
}

type fixture struct {
	fs      types.FS
	patcher *MockPatcher
	orch    *merge.Orchestrator
}

func newFixture(t *testing.T, snap *types.Snapshot) *fixture {
	t.Helper()
	fsys := filesystem.NewMemory()
	write := func(path string) {
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, fsys.WriteFile(path, []byte(filepath.Base(path)), 0644))
	}

	for _, name := range []string{"0Harmony.dll", "System.Core.dll", "System.Runtime.Serialization.dll", "UnityEngine.dll", "README.md"} {
		write(filepath.Join(moduleDir, name))
	}
	write(filepath.Join(gameDir, "Game_Data/Managed/UnityEngine.dll"))
	write(filepath.Join(gameDir, "Game_Data/Managed/Assembly-CSharp.dll"))
	write(filepath.Join(mergeDir, "Game_Data/Managed/Assembly-CSharp.dll"))

	p := &MockPatcher{}
	return &fixture{
		fs:      fsys,
		patcher: p,
		orch:    merge.NewOrchestrator(staticSnapshots{snap}, fsys, assembly.NewDeployer(fsys, moduleDir), p),
	}
}

func TestMerge_DeploysAndRunsPatcher(t *testing.T) {
	f := newFixture(t, newSnapshot(patchDetails()))

	expected := patcher.Invocation{
		ExtensionRoot:  "/ext/game-game",
		TargetAssembly: filepath.Join(mergeDir, "Game_Data/Managed/Assembly-CSharp.dll"),
		EntryPoint:     "Game.Main::Start",
		DryRun:         false,
		ModsPath:       filepath.Join(gameDir, "Mods"),
		Context:        "game",
		InjectRuntime:  true,
		RuntimeDir:     filepath.Join(gameDir, "Game_Data/Managed"),
	}
	f.patcher.On("Run", mock.Anything, expected).Return(nil).Once()

	err := f.orch.Merge(context.Background(), "/mods/marker/__harmony_merge_fake_file", mergeDir)
	require.NoError(t, err)
	f.patcher.AssertExpectations(t)

	staged, err := assembly.ListNames(f.fs, filepath.Join(mergeDir, "Game_Data/Managed"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"0Harmony.dll", "Assembly-CSharp.dll", "System.Runtime.Serialization.dll"}, staged)

	// game files are untouched
	owned, err := assembly.ListNames(f.fs, filepath.Join(gameDir, "Game_Data/Managed"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"UnityEngine.dll", "Assembly-CSharp.dll"}, owned)
}

func TestMerge_Outcomes(t *testing.T) {
	patchErr := stderrors.New("patcher crashed")

	tests := []struct {
		name      string
		runResult error
		check     func(t *testing.T, err error)
	}{
		{
			name:      "user_cancel_is_success",
			runResult: patcher.ErrUserCanceled,
			check: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:      "wrapped_user_cancel_is_success",
			runResult: errors.Wrap(patcher.ErrUserCanceled, errors.ErrPatcherExec, "aborted"),
			check: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:      "patcher_error_propagates_unchanged",
			runResult: patchErr,
			check: func(t *testing.T, err error) {
				assert.Same(t, patchErr, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, newSnapshot(patchDetails()))
			f.patcher.On("Run", mock.Anything, mock.Anything).Return(tt.runResult).Once()
			tt.check(t, f.orch.Merge(context.Background(), "", mergeDir))
		})
	}
}

func TestMerge_NotManagingGame(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *types.Snapshot)
	}{
		{"no_current_game", func(s *types.Snapshot) { s.CurrentGameID = "" }},
		{"profile_of_other_game", func(s *types.Snapshot) {
			p := s.Profiles["p1"]
			p.GameID = "other"
			s.Profiles["p1"] = p
		}},
		{"not_discovered", func(s *types.Snapshot) { s.Discovered = nil }},
		{"no_active_profile", func(s *types.Snapshot) { s.ActiveProfileID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := newSnapshot(patchDetails())
			tt.mutate(snap)
			f := newFixture(t, snap)

			err := f.orch.Merge(context.Background(), "", mergeDir)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrNotManagingGame))
			assert.Contains(t, err.Error(), "not actively managing any game")
			f.patcher.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
		})
	}
}

func TestMerge_NotATarget(t *testing.T) {
	f := newFixture(t, newSnapshot(nil))

	require.NoError(t, f.orch.Merge(context.Background(), "", mergeDir))
	f.patcher.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestMerge_MissingStagedFileIsSkipped(t *testing.T) {
	f := newFixture(t, newSnapshot(patchDetails()))
	require.NoError(t, f.fs.Remove(filepath.Join(mergeDir, "Game_Data/Managed/Assembly-CSharp.dll")))

	require.NoError(t, f.orch.Merge(context.Background(), "", mergeDir))
	f.patcher.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)

	exists, err := filesystem.Exists(f.fs, filepath.Join(mergeDir, "Game_Data/Managed/0Harmony.dll"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMerge_ListingFailureStopsBeforePatcher(t *testing.T) {
	f := newFixture(t, newSnapshot(patchDetails()))
	require.NoError(t, f.fs.RemoveAll(moduleDir))

	err := f.orch.Merge(context.Background(), "", mergeDir)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAssemblyList))
	f.patcher.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestCanMerge(t *testing.T) {
	t.Run("not_a_target", func(t *testing.T) {
		filter, ok := merge.CanMerge(types.Game{ID: "game"}, types.DiscoveryResult{Path: gameDir})
		assert.False(t, ok)
		assert.Nil(t, filter)
	})

	t.Run("target", func(t *testing.T) {
		filter, ok := merge.CanMerge(types.Game{ID: "game", Details: patchDetails()}, types.DiscoveryResult{Path: gameDir})
		require.True(t, ok)
		assert.Equal(t, []merge.BaseFile{{
			In:  filepath.Join(gameDir, "Game_Data/Managed/Assembly-CSharp.dll"),
			Out: filepath.Join("Game_Data/Managed", "Assembly-CSharp.dll"),
		}}, filter.BaseFiles)
		assert.True(t, filter.Match("/mods/Vortex Harmony Mod (Default)/__harmony_merge_fake_file"))
		assert.False(t, filter.Match("/mods/other/plugin.dll"))
	})
}

func TestTest(t *testing.T) {
	sentinel := []types.Instruction{
		{Type: "copy", Source: "readme.txt", Destination: "readme.txt"},
		{Type: "copy", Source: "__harmony_merge_fake_file", Destination: "__harmony_merge_fake_file"},
	}

	tests := []struct {
		name         string
		snap         *types.Snapshot
		instructions []types.Instruction
		expected     bool
	}{
		{"sentinel_present", newSnapshot(patchDetails()), sentinel, true},
		{"no_sentinel", newSnapshot(patchDetails()), sentinel[:1], false},
		{"empty_source_ignored", newSnapshot(patchDetails()), []types.Instruction{
			{Type: "attribute", Destination: "__harmony_merge_fake_file"},
		}, false},
		{"not_a_target", newSnapshot(nil), sentinel, false},
		{"no_game", nil, sentinel, false},
		{"no_instructions", newSnapshot(patchDetails()), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, merge.Test(tt.snap, tt.instructions))
		})
	}
}
