package types

// Mod attribute keys understood by the host registry
const (
	AttrName            = "name"
	AttrLogicalFileName = "logicalFileName"
	AttrModID           = "modId"
	AttrVersion         = "version"
	AttrVariant         = "variant"
	AttrInstallTime     = "installTime"
	AttrType            = "type"
)

// ModStateInstalled is the registry state of a mod whose files are in place.
const ModStateInstalled = "installed"

// Game describes a game known to the host. Details carries vendor supplied
// data registered by the game's extension.
type Game struct {
	ID            string                 `yaml:"id" json:"id"`
	Name          string                 `yaml:"name" json:"name"`
	ExtensionPath string                 `yaml:"extensionPath" json:"extensionPath"`
	Details       map[string]interface{} `yaml:"details,omitempty" json:"details,omitempty"`
}

// DiscoveryResult is where the host found a game on disk.
type DiscoveryResult struct {
	Path string `yaml:"path" json:"path"`
}

// ModState is the per-profile state of a single mod. A nil Enabled means the
// profile never recorded a choice.
type ModState struct {
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
}

// Profile is a named set of enabled mods for one game.
type Profile struct {
	ID       string              `yaml:"id" json:"id"`
	GameID   string              `yaml:"gameId" json:"gameId"`
	Name     string              `yaml:"name" json:"name"`
	ModState map[string]ModState `yaml:"modState,omitempty" json:"modState,omitempty"`
}

// Mod is an entry in the host's persistent mod registry.
type Mod struct {
	ID               string                 `yaml:"id" json:"id"`
	State            string                 `yaml:"state" json:"state"`
	Type             string                 `yaml:"type" json:"type"`
	InstallationPath string                 `yaml:"installationPath" json:"installationPath"`
	Attributes       map[string]interface{} `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// Instruction is one step of a mod's installation as recorded by the host.
type Instruction struct {
	Type        string `yaml:"type" json:"type"`
	Source      string `yaml:"source,omitempty" json:"source,omitempty"`
	Destination string `yaml:"destination,omitempty" json:"destination,omitempty"`
}

// DeployedFile is a file the host placed during the previous deployment.
type DeployedFile struct {
	RelPath string `yaml:"relPath" json:"relPath"`
	Source  string `yaml:"source" json:"source"`
	Target  string `yaml:"target,omitempty" json:"target,omitempty"`
}

// Deployment lists the previously deployed files keyed by mod type.
type Deployment map[string][]DeployedFile

// GameInfo pairs the active game with its discovered install location.
type GameInfo struct {
	Game          Game
	DiscoveryPath string
}
