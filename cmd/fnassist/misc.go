package fnassist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/fnassist/internal/version"
	"github.com/arthur-debert/fnassist/pkg/access"
	"github.com/arthur-debert/fnassist/pkg/config"
	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newAccessCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "access",
		Short:   MsgAccessShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := access.Require(a.access); err != nil {
				return err
			}
			return a.out.RenderMessage(MsgAccessGranted)
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: MsgConfigInitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.opts.configDir
			if dir == "" {
				dir = a.paths.ConfigDir()
			}
			dest := filepath.Join(a.paths.ExpandHome(dir), "config.toml")
			if _, err := os.Stat(dest); err == nil && !force {
				return errors.Newf(errors.ErrValidation, "%s already exists, use --force to overwrite", dest).
					WithDetail("path", dest)
			}

			data, err := config.GenerateTOML(a.cfg)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrUnexpectedOS, "cannot create %s", filepath.Dir(dest))
			}
			if err := os.WriteFile(dest, data, 0644); err != nil {
				return errors.Wrapf(err, errors.ErrUnexpectedOS, "cannot write %s", dest)
			}
			return a.out.RenderMessage(fmt.Sprintf(MsgConfigWritten, dest))
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: MsgConfigShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.format.Structured() {
				return a.out.RenderResult(config.ToMap(a.cfg))
			}
			data, err := config.GenerateTOML(a.cfg)
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func newVersionCmd() *cobra.Command {
	var short bool

	cmd := bare(&cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), info.Version)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return nil
		},
	})
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}

func newCompletionCmd() *cobra.Command {
	return bare(&cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: MsgCompletionShort,
		Long: `To load completions:

Bash:
  $ source <(fnassist completion bash)

Zsh:
  $ fnassist completion zsh > "${fpath[1]}/_fnassist"

Fish:
  $ fnassist completion fish | source
`,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	})
}

func newManCmd() *cobra.Command {
	return bare(&cobra.Command{
		Use:    "man <dir>",
		Short:  MsgManShort,
		Hidden: true,
		Args:   exactArgsMsg(1, "an output directory"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(args[0], 0755); err != nil {
				return errors.Wrapf(err, errors.ErrUnexpectedOS, "cannot create %s", args[0])
			}
			if err := doc.GenManTree(cmd.Root(), ManHeader(), args[0]); err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to generate man pages")
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgManWritten+"\n", args[0])
			return nil
		},
	})
}

// ManHeader is the header of every generated man page
func ManHeader() *doc.GenManHeader {
	return &doc.GenManHeader{
		Title:   "FNASSIST",
		Section: "1",
		Source:  "fnassist " + version.Version,
		Manual:  "fnassist manual",
	}
}
