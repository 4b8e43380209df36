package types

// Snapshot is a read-only view of the host state taken at one point in time.
// All accessors are safe on a nil receiver.
type Snapshot struct {
	ActiveProfileID string                     `yaml:"activeProfileId" json:"activeProfileId"`
	CurrentGameID   string                     `yaml:"currentGameId" json:"currentGameId"`
	Games           map[string]Game            `yaml:"games,omitempty" json:"games,omitempty"`
	Profiles        map[string]Profile         `yaml:"profiles,omitempty" json:"profiles,omitempty"`
	Discovered      map[string]DiscoveryResult `yaml:"discovered,omitempty" json:"discovered,omitempty"`
	Mods            map[string]map[string]Mod  `yaml:"mods,omitempty" json:"mods,omitempty"`
	InstallPaths    map[string]string          `yaml:"installPaths,omitempty" json:"installPaths,omitempty"`
}

// Profile looks up a profile by id.
func (s *Snapshot) Profile(id string) (Profile, bool) {
	if s == nil {
		return Profile{}, false
	}
	p, ok := s.Profiles[id]
	return p, ok
}

// ActiveProfile returns the profile currently selected in the host.
func (s *Snapshot) ActiveProfile() (Profile, bool) {
	if s == nil || s.ActiveProfileID == "" {
		return Profile{}, false
	}
	return s.Profile(s.ActiveProfileID)
}

// CurrentGame returns the game the host is managing.
func (s *Snapshot) CurrentGame() (Game, bool) {
	if s == nil || s.CurrentGameID == "" {
		return Game{}, false
	}
	g, ok := s.Games[s.CurrentGameID]
	return g, ok
}

// DiscoveryPath returns where the game was discovered, or "" if unknown.
func (s *Snapshot) DiscoveryPath(gameID string) string {
	if s == nil {
		return ""
	}
	return s.Discovered[gameID].Path
}

// GameInfo returns the managed game and its discovery path. It reports false
// unless the current game belongs to the active profile and has been
// discovered.
func (s *Snapshot) GameInfo() (GameInfo, bool) {
	game, ok := s.CurrentGame()
	if !ok {
		return GameInfo{}, false
	}
	profile, ok := s.ActiveProfile()
	if !ok || profile.GameID != game.ID {
		return GameInfo{}, false
	}
	discovery := s.DiscoveryPath(game.ID)
	if discovery == "" {
		return GameInfo{}, false
	}
	return GameInfo{Game: game, DiscoveryPath: discovery}, true
}

// Mod looks up a mod in the registry of the given game.
func (s *Snapshot) Mod(gameID, modID string) (Mod, bool) {
	if s == nil {
		return Mod{}, false
	}
	m, ok := s.Mods[gameID][modID]
	return m, ok
}

// InstallPathForGame is the directory mods of the game are installed into.
func (s *Snapshot) InstallPathForGame(gameID string) string {
	if s == nil {
		return ""
	}
	return s.InstallPaths[gameID]
}

// ModEnabled reports the profile's enabled flag for a mod and whether the
// flag has been recorded at all.
func (s *Snapshot) ModEnabled(profileID, modID string) (enabled bool, recorded bool) {
	p, ok := s.Profile(profileID)
	if !ok {
		return false, false
	}
	st, ok := p.ModState[modID]
	if !ok || st.Enabled == nil {
		return false, false
	}
	return *st.Enabled, true
}

// Clone returns a copy of s that shares no maps with it. Game details and
// attribute values are copied shallowly.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		ActiveProfileID: s.ActiveProfileID,
		CurrentGameID:   s.CurrentGameID,
		Games:           make(map[string]Game, len(s.Games)),
		Profiles:        make(map[string]Profile, len(s.Profiles)),
		Discovered:      make(map[string]DiscoveryResult, len(s.Discovered)),
		Mods:            make(map[string]map[string]Mod, len(s.Mods)),
		InstallPaths:    make(map[string]string, len(s.InstallPaths)),
	}
	for id, g := range s.Games {
		g.Details = copyMap(g.Details)
		out.Games[id] = g
	}
	for id, p := range s.Profiles {
		if p.ModState != nil {
			states := make(map[string]ModState, len(p.ModState))
			for modID, st := range p.ModState {
				if st.Enabled != nil {
					enabled := *st.Enabled
					st.Enabled = &enabled
				}
				states[modID] = st
			}
			p.ModState = states
		}
		out.Profiles[id] = p
	}
	for id, d := range s.Discovered {
		out.Discovered[id] = d
	}
	for gameID, mods := range s.Mods {
		copied := make(map[string]Mod, len(mods))
		for modID, m := range mods {
			m.Attributes = copyMap(m.Attributes)
			copied[modID] = m
		}
		out.Mods[gameID] = copied
	}
	for id, p := range s.InstallPaths {
		out.InstallPaths[id] = p
	}
	return out
}

func copyMap(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
