package harmonypatcher

import (
	"path/filepath"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/assembly"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/config"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/errors"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/extension"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/filesystem"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/host"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/markermod"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/merge"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/patcher"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/state"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/types"
)

// session bundles the services a command works with
type session struct {
	cfg     *config.Config
	fs      types.FS
	store   *state.Store
	patcher patcher.Patcher
}

func (o *globalOptions) loadConfig() (*config.Config, error) {
	overrides := map[string]interface{}{}
	if o.stateFile != "" {
		overrides["state.file"] = o.stateFile
	}
	return config.Load(config.LoadOptions{
		ConfigFile: o.configFile,
		EnvFile:    o.envFile,
		Overrides:  overrides,
	})
}

func (o *globalOptions) newSession() (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	fsys := filesystem.NewOS()
	store, err := state.Open(fsys, cfg.State.File)
	if err != nil {
		return nil, err
	}
	store.Update(defaultInstallPaths(cfg.Deploy.InstallRoot))

	return &session{
		cfg:     cfg,
		fs:      fsys,
		store:   store,
		patcher: patcher.NewExecPatcher(cfg.Patcher.Command, cfg.Patcher.Args, cfg.Patcher.CancelExitCode),
	}, nil
}

// defaultInstallPaths gives every known game without an install path the
// directory <root>/<game id>
func defaultInstallPaths(root string) func(data *types.Snapshot) {
	return func(data *types.Snapshot) {
		gameIDs := make([]string, 0, len(data.Games)+len(data.Profiles))
		for id := range data.Games {
			gameIDs = append(gameIDs, id)
		}
		for _, p := range data.Profiles {
			gameIDs = append(gameIDs, p.GameID)
		}
		for _, id := range gameIDs {
			if id == "" || data.InstallPaths[id] != "" {
				continue
			}
			if data.InstallPaths == nil {
				data.InstallPaths = make(map[string]string)
			}
			data.InstallPaths[id] = filepath.Join(root, id)
		}
	}
}

// host builds a host with the patcher integration registered
func (s *session) host() (*host.Host, error) {
	h := host.New(s.store, s.fs, s.cfg.Deploy.StagingDir)
	if err := extension.Init(h, extension.Deps{
		Snapshots:  s.store,
		Dispatcher: s.store,
		FS:         s.fs,
		Patcher:    s.patcher,
		ModuleDir:  s.cfg.Patcher.ModulePath,
	}); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *session) orchestrator() *merge.Orchestrator {
	return merge.NewOrchestrator(s.store, s.fs, assembly.NewDeployer(s.fs, s.cfg.Patcher.ModulePath), s.patcher)
}

func (s *session) markers() *markermod.Manager {
	return markermod.NewManager(s.store, s.fs)
}

// profile returns the profile to act on, activating it when given explicitly
func (s *session) profile(profileID string) (types.Profile, error) {
	if profileID != "" {
		if err := s.store.Activate(profileID); err != nil {
			return types.Profile{}, err
		}
	}
	p, ok := s.store.Snapshot().ActiveProfile()
	if !ok {
		return types.Profile{}, errors.New(errors.ErrInvalidInput, MsgErrNoProfile)
	}
	return p, nil
}
