// Package harmonypatcher implements the harmonypatcher command line.
package harmonypatcher

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/internal/version"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/logging"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/ui"
)

// globalOptions are the persistent flags shared by all commands
type globalOptions struct {
	verbosity  int
	configFile string
	envFile    string
	stateFile  string
	logFile    string
	format     string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "harmonypatcher",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity, opts.resolveLogFile())
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVar(&opts.configFile, "config", "", MsgFlagConfig)
	flags.StringVar(&opts.envFile, "env-file", "", MsgFlagEnvFile)
	flags.StringVar(&opts.stateFile, "state", "", MsgFlagState)
	flags.StringVar(&opts.logFile, "log-file", "", MsgFlagLogFile)
	flags.StringVar(&opts.format, "format", "auto", MsgFlagFormat)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newDeployCmd(opts))
	rootCmd.AddCommand(newMergeCmd(opts))
	rootCmd.AddCommand(newEnsureMarkerCmd(opts))
	rootCmd.AddCommand(newResolveCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newGenConfigCmd(opts))
	rootCmd.AddCommand(newTopicsCmd(opts))
	rootCmd.AddCommand(newManCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// resolveLogFile prefers --log-file, then logging.file from the config. A
// config that fails to load is reported by the command itself.
func (o *globalOptions) resolveLogFile() string {
	if o.logFile != "" {
		return o.logFile
	}
	if cfg, err := o.loadConfig(); err == nil {
		return cfg.Logging.File
	}
	return ""
}

// printer builds the output printer for the --format flag
func (o *globalOptions) printer(cmd *cobra.Command) (*ui.Printer, error) {
	format, err := ui.ParseFormat(o.format)
	if err != nil {
		return nil, fmt.Errorf(MsgErrFormat, err)
	}
	return ui.NewPrinter(cmd.OutOrStdout(), format, os.Stdout), nil
}
