package merge

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/assembly"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/errors"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/logging"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/markermod"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/patcher"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/patchtarget"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/types"
)

// BaseFile is a game file the host copies into the merge directory before
// Merge runs.
type BaseFile struct {
	// In is the absolute source path inside the game installation
	In string
	// Out is the path relative to the merge directory
	Out string
}

// Filter describes what the host hands to Merge.
type Filter struct {
	BaseFiles []BaseFile
	// Match selects deployed files that belong to this merge
	Match func(path string) bool
}

// Orchestrator coordinates the patcher merge for the active game.
type Orchestrator struct {
	snapshots types.SnapshotProvider
	fs        types.FS
	deployer  *assembly.Deployer
	patcher   patcher.Patcher
	logger    zerolog.Logger
}

// NewOrchestrator creates an Orchestrator
func NewOrchestrator(snapshots types.SnapshotProvider, fsys types.FS, deployer *assembly.Deployer, p patcher.Patcher) *Orchestrator {
	return &Orchestrator{
		snapshots: snapshots,
		fs:        fsys,
		deployer:  deployer,
		patcher:   p,
		logger:    logging.GetLogger("merge"),
	}
}

// Merge patches the staged copy of the active game's assembly inside
// mergeDir. mergeFile is the deployed file that triggered the merge; only the
// patch target decides what gets patched.
func (o *Orchestrator) Merge(ctx context.Context, mergeFile, mergeDir string) error {
	info, ok := o.snapshots.Snapshot().GameInfo()
	if !ok {
		return errors.New(errors.ErrNotManagingGame, "not actively managing any game")
	}

	target, ok := patchtarget.Resolve(info.Game)
	if !ok {
		o.logger.Debug().Str("game", info.Game.ID).Msg("Game is not a patch target, nothing to merge")
		return nil
	}

	done := logging.LogOperationStart(o.logger, "merge")
	defer done()

	dataPath := filepath.Join(info.DiscoveryPath, target.DataPath)
	modsPath := filepath.Join(info.DiscoveryPath, target.ModsPath)
	merged := filepath.Join(mergeDir, target.DataPath)
	runtimeDir := patchtarget.AssemblyDir(dataPath)

	logger := o.logger.With().
		Str("game", info.Game.ID).
		Str("trigger", mergeFile).
		Str("target", merged).
		Logger()

	if _, err := o.fs.Stat(merged); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			logger.Debug().Msg("Staged assembly not found, skipping patcher")
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat staged assembly %s", merged)
	}

	destDir := filepath.Join(mergeDir, patchtarget.AssemblyDir(target.DataPath))
	copied, err := o.deployer.DeployMissing(ctx, destDir, runtimeDir)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to copy required harmony patcher assembly")
		return err
	}
	logger.Debug().Strs("assemblies", copied).Msg("Deployed patcher assemblies")

	err = o.patcher.Run(ctx, patcher.Invocation{
		ExtensionRoot:  info.Game.ExtensionPath,
		TargetAssembly: merged,
		EntryPoint:     target.EntryPoint,
		DryRun:         false,
		ModsPath:       modsPath,
		Context:        info.Game.ID,
		InjectRuntime:  target.InjectRuntime,
		RuntimeDir:     runtimeDir,
	})
	if stderrors.Is(err, patcher.ErrUserCanceled) {
		logger.Info().Msg("Patching canceled by user")
		return nil
	}
	return err
}

// CanMerge reports whether the patcher merge applies to game and, if so,
// which base files the host has to stage.
func CanMerge(game types.Game, discovery types.DiscoveryResult) (*Filter, bool) {
	target, ok := patchtarget.Resolve(game)
	if !ok {
		return nil, false
	}
	return &Filter{
		BaseFiles: []BaseFile{{
			In:  filepath.Join(discovery.Path, target.DataPath),
			Out: target.DataPath,
		}},
		Match: IsSentinel,
	}, true
}

// IsSentinel reports whether path refers to the marker mod's sentinel file.
func IsSentinel(path string) bool {
	return strings.Contains(path, markermod.SentinelFile)
}

// Test reports whether instructions belong to the patcher mod type. This is
// the case only for patch targets and only when some instruction copies the
// sentinel file.
func Test(snap *types.Snapshot, instructions []types.Instruction) bool {
	info, ok := snap.GameInfo()
	if !ok {
		return false
	}
	if !patchtarget.IsTarget(info.Game) {
		return false
	}
	for _, instr := range instructions {
		if instr.Source != "" && IsSentinel(instr.Source) {
			return true
		}
	}
	return false
}
