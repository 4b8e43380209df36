// Package markermod keeps the per-profile marker mod in the host registry.
// The marker mod carries no content besides a zero-byte sentinel file; its
// only purpose is to route deployments to the patcher mod type and to give
// users a switch to turn the patcher off for a profile.
package markermod

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/errors"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/filesystem"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/logging"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/types"
)

const (
	// ModType is the mod type the marker mod and the patcher merge belong to
	ModType = "harmonypatchermod"

	// SentinelFile is written below the marker mod's install path. Its
	// presence in a mod's instructions identifies the patcher mod type.
	SentinelFile = "__harmony_merge_fake_file"

	// DisplayName is the name shown for every marker mod
	DisplayName = "Vortex Harmony Mod"

	// NumericID groups all marker mods together; the value itself is arbitrary
	NumericID = 42

	// Version of the marker mod metadata
	Version = "1.0.0"

	// placeholder replaces characters that are unsafe in paths
	placeholder = "_"
)

// unsafeChars are invalid in Windows paths; they are replaced on every
// platform so ids stay the same across machines.
var unsafeChars = strings.NewReplacer(
	":", placeholder,
	"/", placeholder,
	`\`, placeholder,
	"*", placeholder,
	"?", placeholder,
	`"`, placeholder,
	"<", placeholder,
	">", placeholder,
	"|", placeholder,
)

// Sanitize replaces filesystem unsafe characters in a profile name
func Sanitize(profileName string) string {
	return unsafeChars.Replace(profileName)
}

// ModID returns the marker mod id for a profile name
func ModID(profileName string) string {
	return fmt.Sprintf("%s (%s)", DisplayName, Sanitize(profileName))
}

// Manager creates and refreshes marker mods.
type Manager struct {
	dispatcher types.Dispatcher
	fs         types.FS
	now        func() time.Time
	logger     zerolog.Logger
}

// NewManager creates a Manager writing through dispatcher and fsys
func NewManager(dispatcher types.Dispatcher, fsys types.FS) *Manager {
	return &Manager{
		dispatcher: dispatcher,
		fs:         fsys,
		now:        time.Now,
		logger:     logging.GetLogger("markermod"),
	}
}

// WithClock replaces the time source used for install timestamps
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// New builds the registry entry of a marker mod for profile
func (m *Manager) New(profile types.Profile) types.Mod {
	id := ModID(profile.Name)
	return types.Mod{
		ID:               id,
		State:            types.ModStateInstalled,
		Type:             ModType,
		InstallationPath: id,
		Attributes:       attributeMap(m.attributes(profile)),
	}
}

// Ensure makes sure the marker mod of profile exists in the registry of the
// profile's game and returns its id. An existing entry has its metadata
// refreshed, which also upgrades entries written by older versions.
func (m *Manager) Ensure(ctx context.Context, snap *types.Snapshot, profile types.Profile) (string, error) {
	done := logging.LogOperationStart(m.logger, "ensure-marker-mod")
	defer done()

	id := ModID(profile.Name)
	logger := m.logger.With().Str("game", profile.GameID).Str("mod", id).Logger()

	if _, ok := snap.Mod(profile.GameID, id); ok {
		m.dispatcher.SetModAttributes(profile.GameID, id, m.attributes(profile))
		logger.Debug().Msg("Refreshed marker mod metadata")
		return id, nil
	}

	installPath := snap.InstallPathForGame(profile.GameID)
	if installPath == "" {
		return "", errors.Newf(errors.ErrNoInstallPath, "no install path known for game %s", profile.GameID).
			WithDetail("game", profile.GameID)
	}

	if err := m.create(ctx, profile.GameID, m.New(profile)); err != nil {
		return "", err
	}

	sentinel := filepath.Join(installPath, id, SentinelFile)
	if err := filesystem.EnsureFile(m.fs, sentinel); err != nil {
		return "", errors.Wrapf(err, errors.ErrSentinel, "failed to write sentinel for %s", id).
			WithDetail("path", sentinel)
	}

	logger.Info().Str("sentinel", sentinel).Msg("Created marker mod")
	return id, nil
}

func (m *Manager) create(ctx context.Context, gameID string, mod types.Mod) error {
	select {
	case res, ok := <-m.dispatcher.CreateMod(ctx, gameID, mod):
		if !ok {
			return errors.Newf(errors.ErrModCreate, "creation of %s was abandoned", mod.ID)
		}
		if res.Err != nil {
			return res.Err
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) attributes(profile types.Profile) []types.AttributeUpsert {
	return []types.AttributeUpsert{
		{Key: types.AttrInstallTime, Value: m.now()},
		{Key: types.AttrName, Value: DisplayName},
		{Key: types.AttrType, Value: ModType},
		{Key: types.AttrLogicalFileName, Value: DisplayName},
		{Key: types.AttrModID, Value: NumericID},
		{Key: types.AttrVersion, Value: Version},
		{Key: types.AttrVariant, Value: Sanitize(profile.Name)},
	}
}

func attributeMap(upserts []types.AttributeUpsert) map[string]interface{} {
	out := make(map[string]interface{}, len(upserts))
	for _, u := range upserts {
		if u.Key == types.AttrType {
			continue
		}
		out[u.Key] = u.Value
	}
	return out
}
