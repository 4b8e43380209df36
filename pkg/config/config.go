package config

import (
	"path/filepath"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/paths"
)

// Patcher configures the external patcher and the assemblies it ships with
type Patcher struct {
	ModulePath     string   `koanf:"module_path" toml:"module_path"`
	Command        string   `koanf:"command" toml:"command"`
	Args           []string `koanf:"args" toml:"args"`
	CancelExitCode int      `koanf:"cancel_exit_code" toml:"cancel_exit_code"`
}

// State configures where the host state is persisted
type State struct {
	File string `koanf:"file" toml:"file"`
}

// Deploy configures the deployment cycle
type Deploy struct {
	StagingDir string `koanf:"staging_dir" toml:"staging_dir"`
	// InstallRoot holds <game id>/ mod directories for games whose state
	// names no install path
	InstallRoot string `koanf:"install_root" toml:"install_root"`
}

// Logging configures the log file
type Logging struct {
	File string `koanf:"file" toml:"file"`
}

// Config is the main configuration structure
type Config struct {
	Patcher Patcher `koanf:"patcher" toml:"patcher"`
	State   State   `koanf:"state" toml:"state"`
	Deploy  Deploy  `koanf:"deploy" toml:"deploy"`
	Logging Logging `koanf:"logging" toml:"logging"`
}

// postProcessConfig fills path defaults that depend on the XDG directories
func postProcessConfig(cfg *Config, p *paths.Paths) {
	if cfg.Patcher.ModulePath == "" {
		cfg.Patcher.ModulePath = filepath.Join(p.DataDir(), "modules", "harmony-patcher", "dist")
	}
	if cfg.State.File == "" {
		cfg.State.File = p.StateFile()
	}
	if cfg.Deploy.StagingDir == "" {
		cfg.Deploy.StagingDir = p.StagingDir()
	}
	if cfg.Deploy.InstallRoot == "" {
		cfg.Deploy.InstallRoot = p.InstallRoot()
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = p.LogFile()
	}

	cfg.Patcher.ModulePath = paths.ExpandHome(cfg.Patcher.ModulePath)
	cfg.State.File = paths.ExpandHome(cfg.State.File)
	cfg.Deploy.StagingDir = paths.ExpandHome(cfg.Deploy.StagingDir)
	cfg.Deploy.InstallRoot = paths.ExpandHome(cfg.Deploy.InstallRoot)
	cfg.Logging.File = paths.ExpandHome(cfg.Logging.File)
}
