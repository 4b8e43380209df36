// Package gate hooks into the host's deploy cycle and keeps the marker mod
// present and enabled for patch targets.
package gate

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/logging"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/markermod"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/patchtarget"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/types"
)

// Gate runs before every deployment of a profile.
type Gate struct {
	snapshots  types.SnapshotProvider
	dispatcher types.Dispatcher
	markers    *markermod.Manager
	logger     zerolog.Logger
}

// New creates a Gate
func New(snapshots types.SnapshotProvider, dispatcher types.Dispatcher, markers *markermod.Manager) *Gate {
	return &Gate{
		snapshots:  snapshots,
		dispatcher: dispatcher,
		markers:    markers,
		logger:     logging.GetLogger("gate"),
	}
}

// WillDeploy ensures the marker mod of profileID exists and enables it,
// unless the user explicitly disabled an already known marker mod.
// Games that are not patch targets are left alone.
func (g *Gate) WillDeploy(ctx context.Context, profileID string, deployment types.Deployment) error {
	snap := g.snapshots.Snapshot()
	info, ok := snap.GameInfo()
	if !ok {
		return nil
	}
	if !patchtarget.IsTarget(info.Game) {
		return nil
	}

	profile, ok := snap.Profile(profileID)
	if !ok {
		g.logger.Warn().Str("profile", profileID).Msg("Deploying unknown profile, skipping marker mod")
		return nil
	}

	id := markermod.ModID(profile.Name)
	_, known := snap.Mod(profile.GameID, id)

	if _, err := g.markers.Ensure(ctx, snap, profile); err != nil {
		return err
	}

	if enabled, recorded := snap.ModEnabled(profile.ID, id); known && recorded && !enabled {
		g.logger.Info().Str("profile", profile.ID).Str("mod", id).Msg("Marker mod disabled by user, leaving it off")
		return nil
	}

	g.dispatcher.SetModEnabled(profile.ID, id, true)
	g.logger.Debug().
		Str("profile", profile.ID).
		Str("mod", id).
		Int("modTypes", len(deployment)).
		Msg("Enabled marker mod")
	return nil
}
