package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvDataDir overrides the XDG data directory
	EnvDataDir = "HARMONY_PATCHER_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory
	EnvConfigDir = "HARMONY_PATCHER_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory
	EnvStateDir = "HARMONY_PATCHER_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name used below each XDG base directory
	AppDirName = "harmonypatcher"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// StateFileName is the name of the host state file
	StateFileName = "state.yaml"

	// StagingDirName is the subdirectory merges are staged into
	StagingDirName = "staging"

	// InstallDirName is the subdirectory holding per-game mod directories
	InstallDirName = "mods"

	// LogFileName is the name of the log file
	LogFileName = "harmonypatcher.log"
)

// Paths resolves the directories the tool reads and writes.
type Paths struct {
	dataDir   string
	configDir string
	stateDir  string
}

// New creates a Paths instance from the environment.
func New() *Paths {
	p := &Paths{}

	if dir := os.Getenv(EnvDataDir); dir != "" {
		p.dataDir = expandHome(dir)
	} else {
		p.dataDir = filepath.Join(xdg.DataHome, AppDirName)
	}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = expandHome(dir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if dir := os.Getenv(EnvStateDir); dir != "" {
		p.stateDir = expandHome(dir)
	} else {
		p.stateDir = filepath.Join(xdg.StateHome, AppDirName)
	}

	return p
}

// DataDir returns the data directory
func (p *Paths) DataDir() string {
	return p.dataDir
}

// ConfigDir returns the config directory
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// StateDir returns the state directory
func (p *Paths) StateDir() string {
	return p.stateDir
}

// ConfigFile returns the default user configuration file
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

// StateFile returns the default host state file
func (p *Paths) StateFile() string {
	return filepath.Join(p.dataDir, StateFileName)
}

// StagingDir returns the directory merges are staged into
func (p *Paths) StagingDir() string {
	return filepath.Join(p.dataDir, StagingDirName)
}

// InstallRoot returns the directory default per-game install paths live in
func (p *Paths) InstallRoot() string {
	return filepath.Join(p.dataDir, InstallDirName)
}

// InstallDir returns the default install path for a game's mods
func (p *Paths) InstallDir(gameID string) string {
	return filepath.Join(p.InstallRoot(), gameID)
}

// LogFile returns the log file path
func (p *Paths) LogFile() string {
	return filepath.Join(p.stateDir, LogFileName)
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~user is left alone
	return path
}

// ExpandHome is the exported form of expandHome for configuration values.
func ExpandHome(path string) string {
	return expandHome(path)
}
