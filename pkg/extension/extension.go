// Package extension wires the patcher integration into a host.
package extension

import (
	"context"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/assembly"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/errors"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/gate"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/logging"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/markermod"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/merge"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/patcher"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/patchtarget"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/types"
)

// Priority of the patcher mod type among the host's mod types
const Priority = 25

// ModType describes a mod type contributed to the host.
type ModType struct {
	Name     string
	Priority int
	// IsSupported reports whether the mod type applies to a game
	IsSupported func(gameID string) bool
	// TargetPath is where mods of this type are deployed to
	TargetPath func(game types.Game) string
	// Test reports whether an installation belongs to this mod type
	Test func(instructions []types.Instruction) bool
}

// MergeRegistration describes a merge contributed to the host.
type MergeRegistration struct {
	// ModType is the mod type whose deployment triggers the merge
	ModType  string
	CanMerge func(game types.Game, discovery types.DiscoveryResult) (*merge.Filter, bool)
	Merge    func(ctx context.Context, mergeFile, mergeDir string) error
}

// WillDeployHook runs before the host deploys a profile.
type WillDeployHook func(ctx context.Context, profileID string, deployment types.Deployment) error

// Registrar is the part of the host an extension registers with.
type Registrar interface {
	RegisterModType(modType ModType) error
	RegisterMerge(reg MergeRegistration) error
	OnWillDeploy(name string, hook WillDeployHook) error
}

// Deps are the host services the integration runs on.
type Deps struct {
	Snapshots  types.SnapshotProvider
	Dispatcher types.Dispatcher
	FS         types.FS
	Patcher    patcher.Patcher
	// ModuleDir holds the patcher support assemblies
	ModuleDir string
}

// Init registers the patcher mod type, its merge and the will-deploy hook.
func Init(r Registrar, deps Deps) error {
	if deps.Snapshots == nil || deps.Dispatcher == nil || deps.FS == nil || deps.Patcher == nil {
		return errors.New(errors.ErrInvalidInput, "extension dependencies are incomplete")
	}

	logger := logging.GetLogger("extension")

	orchestrator := merge.NewOrchestrator(deps.Snapshots, deps.FS, assembly.NewDeployer(deps.FS, deps.ModuleDir), deps.Patcher)
	deployGate := gate.New(deps.Snapshots, deps.Dispatcher, markermod.NewManager(deps.Dispatcher, deps.FS))

	modType := ModType{
		Name:     markermod.ModType,
		Priority: Priority,
		IsSupported: func(gameID string) bool {
			info, ok := deps.Snapshots.Snapshot().GameInfo()
			if !ok || info.Game.ID != gameID {
				return false
			}
			return patchtarget.IsTarget(info.Game)
		},
		TargetPath: func(game types.Game) string {
			return deps.Snapshots.Snapshot().DiscoveryPath(game.ID)
		},
		Test: func(instructions []types.Instruction) bool {
			return merge.Test(deps.Snapshots.Snapshot(), instructions)
		},
	}
	if err := r.RegisterModType(modType); err != nil {
		return err
	}

	if err := r.RegisterMerge(MergeRegistration{
		ModType:  markermod.ModType,
		CanMerge: merge.CanMerge,
		Merge:    orchestrator.Merge,
	}); err != nil {
		return err
	}

	if err := r.OnWillDeploy(markermod.ModType, deployGate.WillDeploy); err != nil {
		return err
	}

	logger.Debug().Str("modType", markermod.ModType).Int("priority", Priority).Msg("Registered harmony patcher integration")
	return nil
}
