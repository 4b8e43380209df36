package assembly

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/errors"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/filesystem"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/logging"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/types"
)

// Ledger records the destination paths written during one deployment
// attempt, in order. It is only consulted to roll the attempt back.
type Ledger struct {
	ID    string
	paths []string
}

func newLedger() *Ledger {
	return &Ledger{ID: uuid.NewString()}
}

// Record appends a successfully written destination path
func (l *Ledger) Record(path string) {
	l.paths = append(l.paths, path)
}

// Paths returns the recorded destination paths
func (l *Ledger) Paths() []string {
	return append([]string(nil), l.paths...)
}

// Deployer copies bundled assemblies from the patcher's module directory.
type Deployer struct {
	fs        types.FS
	moduleDir string
	logger    zerolog.Logger
}

// NewDeployer creates a deployer reading assemblies from moduleDir
func NewDeployer(fsys types.FS, moduleDir string) *Deployer {
	return &Deployer{
		fs:        fsys,
		moduleDir: moduleDir,
		logger:    logging.GetLogger("assembly.deployer"),
	}
}

// Deploy copies every assembly in diff into destDir. If any copy fails the
// files already copied and the partial copy are removed and the error of
// the failed copy is returned; failures during that cleanup are only logged.
func (d *Deployer) Deploy(ctx context.Context, diff []string, destDir string) error {
	ledger := newLedger()
	logger := d.logger.With().Str("attempt", ledger.ID).Str("destination", destDir).Logger()

	for _, name := range diff {
		if err := ctx.Err(); err != nil {
			d.rollback(logger, ledger)
			return err
		}

		dst := filepath.Join(destDir, name)
		if err := filesystem.CopyFile(d.fs, filepath.Join(d.moduleDir, name), dst); err != nil {
			logger.Error().Err(err).Str("assembly", name).Msg("Failed to copy required patcher assembly")
			d.removePartial(logger, dst)
			d.rollback(logger, ledger)
			return errors.Wrapf(err, errors.ErrAssemblyCopy, "failed to copy assembly %s", name).
				WithDetail("assembly", name).
				WithDetail("destination", destDir)
		}
		ledger.Record(dst)
		logger.Debug().Str("assembly", name).Msg("Copied patcher assembly")
	}

	logger.Info().Int("count", len(diff)).Msg("Patcher assemblies deployed")
	return nil
}

// removePartial deletes whatever a failed copy left at dst. dst was not in
// the destination before the attempt, so nothing the game or an earlier
// deployment owns is touched.
func (d *Deployer) removePartial(logger zerolog.Logger, dst string) {
	if err := d.fs.Remove(dst); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		logger.Warn().Err(err).Str("path", dst).Msg("Failed to remove partially copied assembly")
	}
}

func (d *Deployer) rollback(logger zerolog.Logger, ledger *Ledger) {
	for _, path := range ledger.Paths() {
		if err := d.fs.Remove(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Failed to clean up copied assembly")
		}
	}
}

// Missing lists the module directory, destDir and the game's runtimeDir and
// returns the assemblies that still have to be copied into destDir.
func (d *Deployer) Missing(destDir, runtimeDir string) ([]string, error) {
	bundled, err := ListNames(d.fs, d.moduleDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrAssemblyList, "failed to list patcher module %s", d.moduleDir)
	}
	existing, err := ListNames(d.fs, destDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrAssemblyList, "failed to list merge directory %s", destDir)
	}
	owned, err := GameAssemblies(d.fs, runtimeDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrAssemblyList, "failed to list game assemblies in %s", runtimeDir)
	}

	diff := Diff(bundled, existing, owned)
	d.logger.Debug().
		Int("bundled", len(bundled)).
		Int("existing", len(existing)).
		Int("gameOwned", len(owned)).
		Strs("diff", diff).
		Msg("Computed assembly diff")
	return diff, nil
}

// DeployMissing copies the assemblies returned by Missing into destDir and
// returns their names.
func (d *Deployer) DeployMissing(ctx context.Context, destDir, runtimeDir string) ([]string, error) {
	diff, err := d.Missing(destDir, runtimeDir)
	if err != nil {
		return nil, err
	}
	if err := d.Deploy(ctx, diff, destDir); err != nil {
		return nil, err
	}
	return diff, nil
}
