package harmonypatcher

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/assembly"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/logging"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/markermod"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/patchtarget"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/ui"
)

func newDeployCmd(opts *globalOptions) *cobra.Command {
	var profileID string

	cmd := &cobra.Command{
		Use:     "deploy",
		Short:   MsgDeployShort,
		Long:    MsgDeployLong,
		Example: MsgDeployExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.deploy")

			out, err := opts.printer(cmd)
			if err != nil {
				return err
			}
			s, err := opts.newSession()
			if err != nil {
				return err
			}
			profile, err := s.profile(profileID)
			if err != nil {
				return err
			}
			h, err := s.host()
			if err != nil {
				return err
			}

			logger.Info().Str("profile", profile.ID).Str("game", profile.GameID).Msg("Starting deployment")
			report, err := h.Deploy(cmd.Context(), profile.ID, nil)
			if saveErr := s.store.Save(); saveErr != nil {
				logger.Error().Err(saveErr).Msg("Failed to save state")
				if err == nil {
					err = saveErr
				}
			}
			if err != nil {
				return err
			}

			if out.Format() == ui.FormatJSON {
				return out.JSON(report)
			}
			out.Line("Success", fmt.Sprintf(MsgDeployDone, report.ProfileID, report.GameID))
			if len(report.Merges) == 0 {
				out.Line("Muted", MsgNoMerges)
			}
			for _, m := range report.Merges {
				out.Field(m.ModType, fmt.Sprintf(MsgMergeRan, strings.Join(m.Triggers, ", "), m.MergeDir))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&profileID, "profile", "p", "", MsgFlagProfile)
	return cmd
}

func newMergeCmd(opts *globalOptions) *cobra.Command {
	var mergeDir, file string

	cmd := &cobra.Command{
		Use:     "merge",
		Short:   MsgMergeShort,
		Long:    MsgMergeLong,
		Example: MsgMergeExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := opts.printer(cmd)
			if err != nil {
				return err
			}
			s, err := opts.newSession()
			if err != nil {
				return err
			}
			if err := s.orchestrator().Merge(cmd.Context(), file, mergeDir); err != nil {
				return err
			}
			out.Line("Success", fmt.Sprintf(MsgMergeDone, mergeDir))
			return nil
		},
	}
	cmd.Flags().StringVar(&mergeDir, "merge-dir", "", MsgFlagMergeDir)
	cmd.Flags().StringVar(&file, "file", "", MsgFlagFile)
	_ = cmd.MarkFlagRequired("merge-dir")
	return cmd
}

func newEnsureMarkerCmd(opts *globalOptions) *cobra.Command {
	var profileID string

	cmd := &cobra.Command{
		Use:     "ensure-marker",
		Short:   MsgEnsureMarkerShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := opts.printer(cmd)
			if err != nil {
				return err
			}
			s, err := opts.newSession()
			if err != nil {
				return err
			}
			profile, err := s.profile(profileID)
			if err != nil {
				return err
			}
			id, err := s.markers().Ensure(cmd.Context(), s.store.Snapshot(), profile)
			if err != nil {
				return err
			}
			if err := s.store.Save(); err != nil {
				return err
			}
			if out.Format() == ui.FormatJSON {
				return out.JSON(map[string]string{"profile": profile.ID, "modId": id})
			}
			out.Line("Success", fmt.Sprintf(MsgMarkerReady, id))
			return nil
		},
	}
	cmd.Flags().StringVarP(&profileID, "profile", "p", "", MsgFlagProfile)
	return cmd
}

func newResolveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "resolve [game-id]",
		Short:   MsgResolveShort,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := opts.printer(cmd)
			if err != nil {
				return err
			}
			s, err := opts.newSession()
			if err != nil {
				return err
			}

			snap := s.store.Snapshot()
			gameID := snap.CurrentGameID
			if len(args) == 1 {
				gameID = args[0]
			}
			game, ok := snap.Games[gameID]
			if !ok {
				return fmt.Errorf(MsgErrUnknownGame, gameID)
			}

			target, ok := patchtarget.Resolve(game)
			if out.Format() == ui.FormatJSON {
				return out.JSON(map[string]interface{}{"game": gameID, "target": target})
			}
			if !ok {
				out.Line("Muted", fmt.Sprintf(MsgNotATarget, gameID))
				return nil
			}
			printTarget(out, target)
			return nil
		},
	}
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := opts.printer(cmd)
			if err != nil {
				return err
			}
			s, err := opts.newSession()
			if err != nil {
				return err
			}
			st := collectStatus(s)
			if out.Format() == ui.FormatJSON {
				return out.JSON(st)
			}
			printStatus(out, st)
			return nil
		},
	}
}

// status is what the status command reports
type status struct {
	Profile     string              `json:"profile,omitempty"`
	Game        string              `json:"game,omitempty"`
	Discovery   string              `json:"discovery,omitempty"`
	Target      *patchtarget.Config `json:"target,omitempty"`
	MarkerID    string              `json:"markerId,omitempty"`
	MarkerState string              `json:"markerState,omitempty"`
	Assemblies  []string            `json:"assemblies,omitempty"`
}

func collectStatus(s *session) status {
	logger := logging.GetLogger("cmd.status")
	snap := s.store.Snapshot()

	var st status
	if p, ok := snap.ActiveProfile(); ok {
		st.Profile = p.ID
		st.MarkerID = markermod.ModID(p.Name)
		_, known := snap.Mod(p.GameID, st.MarkerID)
		enabled, recorded := snap.ModEnabled(p.ID, st.MarkerID)
		switch {
		case !known:
			st.MarkerState = MsgMarkerMissing
		case !recorded:
			st.MarkerState = MsgMarkerUnspecified
		case enabled:
			st.MarkerState = MsgMarkerEnabled
		default:
			st.MarkerState = MsgMarkerDisabled
		}
	}

	info, ok := snap.GameInfo()
	if !ok {
		st.Game = snap.CurrentGameID
		return st
	}
	st.Game = info.Game.ID
	st.Discovery = info.DiscoveryPath

	target, ok := patchtarget.Resolve(info.Game)
	if !ok {
		return st
	}
	st.Target = target

	bundled, err := assembly.ListNames(s.fs, s.cfg.Patcher.ModulePath)
	if err != nil {
		logger.Warn().Err(err).Str("path", s.cfg.Patcher.ModulePath).Msg("Cannot list patcher module")
		return st
	}
	runtimeDir := patchtarget.AssemblyDir(filepath.Join(info.DiscoveryPath, target.DataPath))
	owned, err := assembly.GameAssemblies(s.fs, runtimeDir)
	if err != nil {
		logger.Warn().Err(err).Str("path", runtimeDir).Msg("Cannot list game assemblies")
		return st
	}
	st.Assemblies = assembly.Diff(bundled, nil, owned)
	return st
}

func printTarget(out *ui.Printer, target *patchtarget.Config) {
	out.Field("dataPath", target.DataPath)
	out.Field("entryPoint", target.EntryPoint)
	out.Field("modsPath", target.ModsPath)
	out.Field("injectRuntime", fmt.Sprintf("%t", target.InjectRuntime))
}

func printStatus(out *ui.Printer, st status) {
	out.Header("Profile")
	out.Field("id", valueOr(st.Profile, "-"))
	out.Field("marker mod", valueOr(st.MarkerID, "-"))
	out.Field("marker state", valueOr(st.MarkerState, "-"))

	out.Header("Game")
	out.Field("id", valueOr(st.Game, "-"))
	out.Field("discovery", valueOr(st.Discovery, "-"))
	if st.Target == nil {
		out.Line("Muted", fmt.Sprintf(MsgNotATarget, valueOr(st.Game, "game")))
		return
	}
	printTarget(out, st.Target)
	out.Field("assemblies", valueOr(strings.Join(st.Assemblies, ", "), "-"))
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
