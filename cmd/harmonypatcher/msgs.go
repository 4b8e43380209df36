package harmonypatcher

// Command descriptions
const (
	MsgRootShort = "Run the harmony patcher as part of a mod deployment"
	MsgRootLong  = `harmonypatcher injects a mod loader into Unity games during deployment.

Games opt in by declaring harmonyPatchDetails. For those games every
deployment keeps a marker mod per profile, stages a copy of the game
assembly, copies the patcher support assemblies next to it and runs the
patcher on the copy. The game's own files are never modified.

State is read from a YAML state file (see 'harmonypatcher topics').`

	MsgDeployShort   = "Run a deployment for a profile"
	MsgDeployLong    = "Run the will-deploy hooks and all applicable merges for a profile. Without --profile the active profile is deployed."
	MsgDeployExample = `  harmonypatcher deploy
  harmonypatcher deploy --profile p1`

	MsgMergeShort   = "Patch a staged game assembly"
	MsgMergeLong    = "Copy the patcher assemblies into a merge directory that already holds a staged copy of the game assembly and run the patcher on it."
	MsgMergeExample = `  harmonypatcher merge --merge-dir /tmp/stage`

	MsgEnsureMarkerShort = "Create or refresh the marker mod of a profile"
	MsgResolveShort      = "Show the patch target of a game"
	MsgStatusShort       = "Show the managed game, its patch target and marker mod"
	MsgGenConfigShort    = "Print the effective configuration as TOML"
	MsgTopicsShort       = "Show help topics"
	MsgManShort          = "Generate the man page"
	MsgVersionShort      = "Print version information"
)

// Output messages
const (
	MsgDeployDone        = "Deployed profile %s of %s"
	MsgMergeRan          = "Merged %s in %s"
	MsgNoMerges          = "No merges applied"
	MsgMarkerReady       = "Marker mod ready: %s"
	MsgNotATarget        = "%s is not a patch target"
	MsgMergeDone         = "Patched %s"
	MsgConfigWritten     = "Wrote configuration to %s\n"
	MsgAvailableTopics   = "Available topics:"
	MsgTopicItem         = "  %s"
	MsgVersionFormat     = "harmonypatcher %s\n  commit: %s\n  built:  %s\n"
	MsgMarkerMissing     = "not created yet"
	MsgMarkerEnabled     = "enabled"
	MsgMarkerDisabled    = "disabled"
	MsgMarkerUnspecified = "enabled (default)"
)

// Error messages
const (
	MsgErrNoProfile    = "no profile given and no active profile"
	MsgErrUnknownGame  = "game '%s' not found"
	MsgErrUnknownTopic = "unknown topic '%s'"
	MsgErrFormat       = "invalid --format: %w"
)

// Flag descriptions
const (
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig   = "Config file (default is $XDG_CONFIG_HOME/harmonypatcher/config.toml)"
	MsgFlagEnvFile  = "Dotenv file loaded before the environment (default .env)"
	MsgFlagState    = "State file (overrides state.file)"
	MsgFlagLogFile  = "Log file (default is $XDG_STATE_HOME/harmonypatcher/harmonypatcher.log)"
	MsgFlagFormat   = "Output format: auto, term, text or json"
	MsgFlagProfile  = "Profile id (default is the active profile)"
	MsgFlagMergeDir = "Merge directory holding the staged game assembly"
	MsgFlagFile     = "Deployed file that triggered the merge"
	MsgFlagWrite    = "Write the configuration to the config file instead of stdout"
)

// MsgUsageTemplate is the usage template of all commands
const MsgUsageTemplate = `{{boldUpper "Usage:"}}{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

{{boldUpper "Aliases:"}}
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

{{boldUpper "Examples:"}}
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

{{boldUpper "Available Commands:"}}{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{else}}{{range $group := .Groups}}

{{bold $group.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{boldUpper "Flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

{{boldUpper "Global Flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
