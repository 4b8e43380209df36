// Package host is a minimal in-process mod manager host. It keeps the mod
// types, merges and deploy hooks registered by extensions and drives the
// merge stage of a deployment: will-deploy hooks first, then every
// applicable merge over a freshly staged merge directory.
//
// Linking deployed files into the game directory is left to the caller.
package host

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/errors"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/extension"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/filesystem"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/logging"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/merge"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/registry"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/types"
)

// Host implements extension.Registrar.
type Host struct {
	snapshots  types.SnapshotProvider
	fs         types.FS
	stagingDir string

	modTypes registry.Registry[extension.ModType]
	merges   registry.Registry[extension.MergeRegistration]
	hooks    registry.Registry[extension.WillDeployHook]

	logger zerolog.Logger
}

var _ extension.Registrar = (*Host)(nil)

// MergeResult describes one merge that ran during Deploy.
type MergeResult struct {
	ModType  string   `json:"modType"`
	MergeDir string   `json:"mergeDir"`
	Triggers []string `json:"triggers"`
}

// Report summarizes a deployment.
type Report struct {
	ProfileID string        `json:"profile"`
	GameID    string        `json:"game"`
	Merges    []MergeResult `json:"merges"`
}

// New creates a Host staging merges below stagingDir
func New(snapshots types.SnapshotProvider, fsys types.FS, stagingDir string) *Host {
	return &Host{
		snapshots:  snapshots,
		fs:         fsys,
		stagingDir: stagingDir,
		modTypes:   registry.New[extension.ModType]("mod type"),
		merges:     registry.New[extension.MergeRegistration]("merge"),
		hooks:      registry.New[extension.WillDeployHook]("will-deploy hook"),
		logger:     logging.GetLogger("host"),
	}
}

// RegisterModType adds a mod type
func (h *Host) RegisterModType(modType extension.ModType) error {
	return h.modTypes.Register(modType.Name, modType)
}

// RegisterMerge adds a merge; its mod type must already be registered
func (h *Host) RegisterMerge(reg extension.MergeRegistration) error {
	if !h.modTypes.Has(reg.ModType) {
		return errors.Newf(errors.ErrNotFound, "merge refers to unknown mod type '%s'", reg.ModType)
	}
	return h.merges.Register(reg.ModType, reg)
}

// OnWillDeploy adds a hook that runs before every deployment
func (h *Host) OnWillDeploy(name string, hook extension.WillDeployHook) error {
	return h.hooks.Register(name, hook)
}

// ModTypes returns the registered mod types ordered by name
func (h *Host) ModTypes() []extension.ModType {
	return h.modTypes.Values()
}

// ModType looks up a mod type by name
func (h *Host) ModType(name string) (extension.ModType, error) {
	return h.modTypes.Get(name)
}

// Deploy runs the will-deploy hooks and the merges for profileID.
// deployment lists files placed by the previous deployment; it is handed to
// the hooks and searched for merge triggers.
func (h *Host) Deploy(ctx context.Context, profileID string, deployment types.Deployment) (*Report, error) {
	done := logging.LogOperationStart(h.logger, "deploy")
	defer done()

	if deployment == nil {
		deployment = types.Deployment{}
	}

	for _, name := range h.hooks.List() {
		hook, err := h.hooks.Get(name)
		if err != nil {
			return nil, err
		}
		h.logger.Debug().Str("hook", name).Str("profile", profileID).Msg("Running will-deploy hook")
		if err := hook(ctx, profileID, deployment); err != nil {
			return nil, err
		}
	}

	// hooks may have changed the state
	snap := h.snapshots.Snapshot()
	profile, ok := snap.Profile(profileID)
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "profile '%s' not found", profileID)
	}
	game, ok := snap.Games[profile.GameID]
	discovery := snap.DiscoveryPath(profile.GameID)
	if !ok || discovery == "" {
		return nil, errors.New(errors.ErrNotManagingGame, "not actively managing any game").
			WithDetail("game", profile.GameID)
	}

	report := &Report{ProfileID: profile.ID, GameID: game.ID}

	for _, reg := range h.merges.Values() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result, err := h.runMerge(ctx, snap, profile, game, discovery, reg, deployment)
		if err != nil {
			return report, err
		}
		if result != nil {
			report.Merges = append(report.Merges, *result)
		}
	}

	h.logger.Info().
		Str("profile", profile.ID).
		Str("game", game.ID).
		Int("merges", len(report.Merges)).
		Msg("Deployment finished")
	return report, nil
}

func (h *Host) runMerge(ctx context.Context, snap *types.Snapshot, profile types.Profile, game types.Game,
	discovery string, reg extension.MergeRegistration, deployment types.Deployment) (*MergeResult, error) {
	logger := h.logger.With().Str("modType", reg.ModType).Str("game", game.ID).Logger()

	modType, err := h.modTypes.Get(reg.ModType)
	if err != nil {
		return nil, err
	}
	if modType.IsSupported != nil && !modType.IsSupported(game.ID) {
		logger.Debug().Msg("Mod type not supported for game")
		return nil, nil
	}

	filter, ok := reg.CanMerge(game, types.DiscoveryResult{Path: discovery})
	if !ok {
		logger.Debug().Msg("Merge does not apply")
		return nil, nil
	}

	triggers, err := h.triggers(snap, profile, reg.ModType, filter.Match, deployment)
	if err != nil {
		return nil, err
	}
	if len(triggers) == 0 {
		logger.Debug().Msg("No enabled mod triggers the merge")
		return nil, nil
	}

	mergeDir := filepath.Join(h.stagingDir, game.ID, reg.ModType)
	if err := h.stage(mergeDir, filter); err != nil {
		return nil, err
	}

	for _, trigger := range triggers {
		logger.Debug().Str("trigger", trigger).Str("mergeDir", mergeDir).Msg("Running merge")
		if err := reg.Merge(ctx, trigger, mergeDir); err != nil {
			return nil, err
		}
	}

	return &MergeResult{ModType: reg.ModType, MergeDir: mergeDir, Triggers: triggers}, nil
}

// triggers collects the files of enabled mods of modType, and the files of
// the previous deployment, that match the merge filter.
func (h *Host) triggers(snap *types.Snapshot, profile types.Profile, modType string,
	match func(string) bool, deployment types.Deployment) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		if path != "" && match(path) && !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	installPath := snap.InstallPathForGame(profile.GameID)
	mods := snap.Mods[profile.GameID]
	if installPath == "" {
		h.logger.Warn().Str("game", profile.GameID).Msg("No install path for game, installed mods are not scanned")
		mods = nil
	}
	ids := make([]string, 0, len(mods))
	for id := range mods {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		mod := mods[id]
		if mod.Type != modType {
			continue
		}
		if enabled, _ := snap.ModEnabled(profile.ID, id); !enabled {
			continue
		}
		modDir := filepath.Join(installPath, mod.InstallationPath)
		entries, err := h.fs.ReadDir(modDir)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				h.logger.Warn().Str("mod", id).Str("path", modDir).Msg("Mod directory missing")
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to list mod %s", id)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				add(filepath.Join(modDir, entry.Name()))
			}
		}
	}

	for _, file := range deployment[modType] {
		add(file.Source)
	}
	return out, nil
}

// stage recreates mergeDir and copies the base files into it. Missing base
// files are skipped; the merge decides how to handle their absence.
func (h *Host) stage(mergeDir string, filter *merge.Filter) error {
	if err := h.fs.RemoveAll(mergeDir); err != nil {
		return errors.Wrapf(err, errors.ErrStaging, "failed to clear merge directory %s", mergeDir)
	}
	if err := h.fs.MkdirAll(mergeDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrStaging, "failed to create merge directory %s", mergeDir)
	}

	for _, base := range filter.BaseFiles {
		dst := filepath.Join(mergeDir, base.Out)
		if err := filesystem.CopyFile(h.fs, base.In, dst); err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				h.logger.Warn().Str("file", base.In).Msg("Base file missing, not staged")
				continue
			}
			return errors.Wrapf(err, errors.ErrStaging, "failed to stage %s", base.In).
				WithDetail("destination", dst)
		}
	}
	return nil
}
