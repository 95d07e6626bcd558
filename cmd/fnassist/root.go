package fnassist

import (
	"context"
	"io"

	"github.com/arthur-debert/fnassist/cmd/fnassist/topics"
	"github.com/arthur-debert/fnassist/internal/version"
	cobratopics "github.com/arthur-debert/fnassist/pkg/cobrax/topics"
	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// annotation that marks commands needing no configuration or container access
const annotationBare = "fnassist:bare"

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	verbosity    int
	format       string
	configDir    string
	notify       bool
	yes          bool
	pick         int
	assumeAccess bool
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	opts := &globalOptions{}
	a.opts = opts

	rootCmd := &cobra.Command{
		Use:     "fnassist",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.CommandPath()).Msg("Command started")
			if cmd.Annotations[annotationBare] == "true" || cmd.Name() == "help" {
				return nil
			}
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If we get here, no subcommand was provided
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, "no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	pf.StringVar(&opts.format, "format", "auto", MsgFlagFormat)
	pf.StringVar(&opts.configDir, "config", "", MsgFlagConfigDir)
	pf.BoolVar(&opts.notify, "notify", false, MsgFlagNotify)
	pf.BoolVarP(&opts.yes, "yes", "y", false, MsgFlagYes)
	pf.IntVar(&opts.pick, "pick", 1, MsgFlagPick)
	pf.BoolVar(&opts.assumeAccess, "assume-access", false, MsgFlagAssumeAccess)

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{ID: "container", Title: "CONTAINERS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "app", Title: "APP BUNDLE:"})
	rootCmd.AddGroup(&cobra.Group{ID: "feeds", Title: "DOWNLOADS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	// Set custom help template
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	// Add all commands
	rootCmd.AddCommand(newContainersCmd(a))
	rootCmd.AddCommand(newRelocateCmd(a))
	rootCmd.AddCommand(newResetCmd(a))
	rootCmd.AddCommand(newWhereCmd(a))
	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newNormalizeCmd(a))
	rootCmd.AddCommand(newOpenCmd(a))
	rootCmd.AddCommand(newDeleteAppCmd(a))
	rootCmd.AddCommand(newPatchCmd(a))
	rootCmd.AddCommand(newDownloadCmd(a))
	rootCmd.AddCommand(newArchiveInfoCmd(a))
	rootCmd.AddCommand(newUpdateCheckCmd(a))
	rootCmd.AddCommand(newAccessCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	// Topic-based help, markdown rendered with glamour
	if _, err := cobratopics.InitializeWithOptions(rootCmd, topics.FS, cobratopics.Options{
		Extensions: []string{".txt", ".md"},
		Renderer:   cobratopics.NewGlamourRenderer(),
	}); err != nil {
		log.Warn().Err(err).Msg("help topics unavailable")
	}

	return rootCmd
}

// Execute runs the command line and returns the process exit code. Errors
// are rendered on stderr in the selected output format.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	a.reportError(stderr, err)
	return 1
}

func bare(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationBare] = "true"
	return cmd
}

func exactArgsMsg(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.Newf(errors.ErrInvalidInput, "%s expects %s", cmd.CommandPath(), what)
		}
		return nil
	}
}
