package assembly

import (
	"io/fs"
	"path/filepath"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/logging"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/patchtarget"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/types"
)

// ListNames returns the names of all entries in dir.
func ListNames(fsys types.FS, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// GameAssemblies lists the assemblies physically present in a game's
// runtime directory. Symlinks are skipped since they were placed by a
// deployment, not shipped by the game. Entries that cannot be inspected are
// skipped as well.
func GameAssemblies(fsys types.FS, runtimeDir string) ([]string, error) {
	names, err := ListNames(fsys, runtimeDir)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("assembly.listing")

	var owned []string
	for _, name := range names {
		if !patchtarget.IsAssembly(name) {
			continue
		}
		info, err := fsys.Lstat(filepath.Join(runtimeDir, name))
		if err != nil {
			logger.Debug().Err(err).Str("assembly", name).Msg("Skipping unreadable game assembly")
			continue
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			continue
		}
		owned = append(owned, name)
	}
	return owned, nil
}
