package state

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/errors"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/logging"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/types"
)

// Store implements types.SnapshotProvider and types.Dispatcher on top of a
// YAML file.
type Store struct {
	mu     sync.RWMutex
	fs     types.FS
	path   string
	data   *types.Snapshot
	logger zerolog.Logger
}

var (
	_ types.SnapshotProvider = (*Store)(nil)
	_ types.Dispatcher       = (*Store)(nil)
)

// Open loads the store at path. A missing file yields an empty store.
func Open(fsys types.FS, path string) (*Store, error) {
	s := &Store{
		fs:     fsys,
		path:   path,
		data:   &types.Snapshot{},
		logger: logging.GetLogger("state").With().Str("file", path).Logger(),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file backing the store
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() error {
	content, err := s.fs.ReadFile(s.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			s.logger.Debug().Msg("No state file, starting empty")
			return nil
		}
		return errors.Wrapf(err, errors.ErrStateLoad, "failed to read state file %s", s.path)
	}

	var data types.Snapshot
	if err := yaml.Unmarshal(content, &data); err != nil {
		return errors.Wrapf(err, errors.ErrStateLoad, "failed to parse state file %s", s.path)
	}
	normalize(&data)
	s.data = &data

	s.logger.Debug().
		Int("games", len(data.Games)).
		Int("profiles", len(data.Profiles)).
		Msg("Loaded state")
	return nil
}

// normalize fills ids that the file leaves implicit in map keys
func normalize(data *types.Snapshot) {
	for id, g := range data.Games {
		if g.ID == "" {
			g.ID = id
			data.Games[id] = g
		}
	}
	for id, p := range data.Profiles {
		if p.ID == "" {
			p.ID = id
			data.Profiles[id] = p
		}
	}
	for gameID, mods := range data.Mods {
		for id, m := range mods {
			if m.ID == "" {
				m.ID = id
				data.Mods[gameID][id] = m
			}
		}
	}
}

// Save writes the current state to disk
func (s *Store) Save() error {
	s.mu.RLock()
	content, err := yaml.Marshal(s.data)
	s.mu.RUnlock()
	if err != nil {
		return errors.Wrap(err, errors.ErrStateSave, "failed to encode state")
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrStateSave, "failed to create state directory for %s", s.path)
	}
	if err := s.fs.WriteFile(s.path, content, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrStateSave, "failed to write state file %s", s.path)
	}
	s.logger.Debug().Msg("Saved state")
	return nil
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() *types.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Update applies fn to the state under the write lock
func (s *Store) Update(fn func(data *types.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

// Activate makes profileID the active profile and its game the current game
func (s *Store) Activate(profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data.Profiles[profileID]
	if !ok {
		return errors.Newf(errors.ErrNotFound, "profile '%s' not found", profileID)
	}
	s.data.ActiveProfileID = p.ID
	s.data.CurrentGameID = p.GameID
	return nil
}

// SetModAttributes applies upserts to a registered mod. The type key updates
// the mod's type rather than its attributes.
func (s *Store) SetModAttributes(gameID, modID string, upserts []types.AttributeUpsert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mod, ok := s.data.Mods[gameID][modID]
	if !ok {
		s.logger.Warn().Str("game", gameID).Str("mod", modID).Msg("Attribute update for unknown mod ignored")
		return
	}
	if mod.Attributes == nil {
		mod.Attributes = make(map[string]interface{}, len(upserts))
	}
	for _, u := range upserts {
		if u.Key == types.AttrType {
			if t, ok := u.Value.(string); ok {
				mod.Type = t
			}
			continue
		}
		mod.Attributes[u.Key] = u.Value
	}
	s.data.Mods[gameID][modID] = mod
}

// SetModEnabled records the enabled flag of a mod in a profile
func (s *Store) SetModEnabled(profileID, modID string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data.Profiles[profileID]
	if !ok {
		s.logger.Warn().Str("profile", profileID).Str("mod", modID).Msg("Enable for unknown profile ignored")
		return
	}
	if p.ModState == nil {
		p.ModState = make(map[string]types.ModState)
	}
	p.ModState[modID] = types.ModState{Enabled: &enabled}
	s.data.Profiles[profileID] = p
}

// CreateMod registers mod in the registry of gameID. The result is delivered
// asynchronously on the returned channel, which is closed afterwards.
func (s *Store) CreateMod(ctx context.Context, gameID string, mod types.Mod) <-chan types.CreateResult {
	result := make(chan types.CreateResult, 1)
	go func() {
		defer close(result)
		result <- types.CreateResult{ModID: mod.ID, Err: s.create(ctx, gameID, mod)}
	}()
	return result
}

func (s *Store) create(ctx context.Context, gameID string, mod types.Mod) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if mod.ID == "" {
		return errors.New(errors.ErrModCreate, "mod id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data.Mods[gameID][mod.ID]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "mod '%s' already exists for %s", mod.ID, gameID)
	}
	if s.data.Mods == nil {
		s.data.Mods = make(map[string]map[string]types.Mod)
	}
	if s.data.Mods[gameID] == nil {
		s.data.Mods[gameID] = make(map[string]types.Mod)
	}
	s.data.Mods[gameID][mod.ID] = mod

	s.logger.Info().Str("game", gameID).Str("mod", mod.ID).Msg("Registered mod")
	return nil
}
