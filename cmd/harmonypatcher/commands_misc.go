package harmonypatcher

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/internal/version"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/config"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/paths"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/ui"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/ui/topics"
)

func newGenConfigCmd(opts *globalOptions) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			content, err := config.Generate(cfg)
			if err != nil {
				return err
			}
			if !write {
				_, err := fmt.Fprint(cmd.OutOrStdout(), content)
				return err
			}

			target := opts.configFile
			if target == "" {
				target = paths.New().ConfigFile()
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(target, []byte(content), 0644); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten, target)
			return err
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgFlagWrite)
	return cmd
}

func newTopicsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "topics [topic]",
		Short:     MsgTopicsShort,
		GroupID:   "misc",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: topics.List(),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := opts.printer(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				out.Header(MsgAvailableTopics)
				for _, name := range topics.List() {
					out.Line("Muted", fmt.Sprintf(MsgTopicItem, name))
				}
				return nil
			}

			md, ok := topics.Get(args[0])
			if !ok {
				return fmt.Errorf(MsgErrUnknownTopic, args[0])
			}
			if out.Format() == ui.FormatTerminal {
				md = topics.Render(md, 0)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "HARMONYPATCHER",
				Section: "1",
				Source:  "harmonypatcher " + version.Version,
				Manual:  "harmonypatcher manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}
