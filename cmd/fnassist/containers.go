package fnassist

import (
	"fmt"
	"strconv"

	"github.com/arthur-debert/fnassist/pkg/containers"
	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/arthur-debert/fnassist/pkg/types"
	"github.com/arthur-debert/fnassist/pkg/ui/view"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// containerInfo is the structured form of one listed container
type containerInfo struct {
	types.Container `yaml:",inline"`
	Size            string `json:"size" yaml:"size"`
	Relocated       bool   `json:"relocated" yaml:"relocated"`
	DataLocation    string `json:"data_location" yaml:"data_location"`
}

func newContainersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "containers",
		Short:   MsgContainersShort,
		GroupID: "container",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listContainers(a)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgContainersLsShort,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listContainers(a)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete [container-path]",
		Short: MsgContainersRmShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteContainer(a, args)
		},
	})
	return cmd
}

func listContainers(a *app) error {
	logger := logging.GetLogger("cli.containers")
	defer logging.LogOperationStart(logger, "list containers")()

	found, err := a.findContainers()
	if err != nil {
		return err
	}

	relocator := a.relocator()
	infos := make([]containerInfo, 0, len(found))
	rows := make([][]string, 0, len(found))
	for i, c := range found {
		c.SizeBytes = containers.ComputeDirectorySize(a.fs, c.RootPath)
		info := containerInfo{
			Container:    c,
			Size:         humanize.Bytes(uint64(c.SizeBytes)),
			Relocated:    relocator.IsUsingSymlink(c.RootPath),
			DataLocation: relocator.DataDisplayPath(c.RootPath),
		}
		infos = append(infos, info)

		data := info.DataLocation
		if info.Relocated {
			data += " (relocated)"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), c.Name(), c.RootPath, info.Size, data})
	}

	report := view.New(fmt.Sprintf("%d game container(s)", len(infos)), infos).
		WithTable([]string{"#", "Name", "Path", "Size", "Game data"}, rows)
	return a.out.RenderResult(report)
}

func deleteContainer(a *app, args []string) error {
	var root string
	if len(args) == 1 {
		abs, err := a.absPath(args[0])
		if err != nil {
			return err
		}
		root = abs
	} else {
		chosen, err := a.chooseContainer()
		if err != nil {
			return err
		}
		if chosen == nil {
			return a.cancelled()
		}
		root = chosen.RootPath
	}

	size := containers.ComputeDirectorySize(a.fs, root)
	ok, err := a.confirm(fmt.Sprintf("Permanently delete %s (%s)? This cannot be undone.",
		root, humanize.Bytes(uint64(size))))
	if err != nil {
		return err
	}
	if !ok {
		return a.cancelled()
	}
	if err := a.deleter().DeleteContainer(root); err != nil {
		return err
	}
	return a.out.RenderMessage(fmt.Sprintf(MsgContainerDeleted, root))
}

func newRelocateCmd(a *app) *cobra.Command {
	var (
		subpath string
		policy  string
		strict  bool
	)
	cmd := &cobra.Command{
		Use:     "relocate <target-dir>",
		Short:   MsgRelocateShort,
		Long:    MsgRelocateLong,
		Example: MsgRelocateExample,
		GroupID: "container",
		Args:    exactArgsMsg(1, "a target directory"),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cli.relocate")

			target, err := a.absPath(args[0])
			if err != nil {
				return err
			}
			chosen, err := a.chooseContainer()
			if err != nil {
				return err
			}
			if chosen == nil {
				return a.cancelled()
			}

			outcome, err := a.relocator().SwitchDataFolder(chosen.RootPath, target)
			if err != nil {
				return err
			}
			logger.Info().Str("status", outcome.Status.String()).Str("target", outcome.TargetPath).Msg("relocation finished")
			if outcome.Changed() {
				sendNotification(a, "Game data moved to "+outcome.TargetPath)
			}
			return a.out.RenderResult(relocationReport(outcome))
		},
	}
	cmd.Flags().StringVar(&subpath, "subpath", "", MsgFlagSubpath)
	cmd.Flags().StringVar(&policy, "policy", "", MsgFlagPolicy)
	cmd.Flags().BoolVar(&strict, "strict", false, MsgFlagStrict)
	bindConfig(cmd, "subpath", "relocation.symlink_subpath")
	bindConfig(cmd, "policy", "relocation.populated_target")
	bindConfig(cmd, "strict", "relocation.strict_target")
	return cmd
}

func relocationReport(outcome *types.RelocationOutcome) *view.Report {
	title := "Game data relocated"
	if !outcome.Changed() {
		title = "Game data already relocated"
	}
	report := view.New(title, outcome).
		AddStyled("Status", outcome.Status.String(), "Success").
		AddStyled("Link", outcome.CurrentPath, "Path").
		AddStyled("Target", outcome.TargetPath, "Path")
	if outcome.BackupPath != "" {
		report.AddStyled("Backup", outcome.BackupPath, "Path")
	}
	if outcome.Status == types.ReplacedAndLinked {
		report.Note("The data already in the target was kept; the container copy was removed.")
	}
	return report
}

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "reset",
		Short:   MsgResetShort,
		GroupID: "container",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chosen, err := a.chooseContainer()
			if err != nil {
				return err
			}
			if chosen == nil {
				return a.cancelled()
			}

			relocator := a.relocator()
			restored, err := relocator.ResetDataLocation(chosen.RootPath)
			if err != nil {
				return err
			}
			if !restored {
				return a.out.RenderMessage(MsgNotRelocated)
			}
			sendNotification(a, "Game data moved back into its container")
			return a.out.RenderMessage(fmt.Sprintf(MsgDataReset, relocator.SourcePath(chosen.RootPath)))
		},
	}
}

func newWhereCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "where",
		Short:   MsgWhereShort,
		GroupID: "container",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chosen, err := a.chooseContainer()
			if err != nil {
				return err
			}
			if chosen == nil {
				return a.cancelled()
			}

			relocator := a.relocator()
			info := containerInfo{
				Container:    *chosen,
				Relocated:    relocator.IsUsingSymlink(chosen.RootPath),
				DataLocation: relocator.DataDisplayPath(chosen.RootPath),
			}
			relocated := "no"
			if info.Relocated {
				relocated = "yes, to " + relocator.RelocatedTo(chosen.RootPath)
			}
			report := view.New("Game data location", info).
				AddStyled("Container", chosen.RootPath, "Path").
				Add("Relocated", relocated).
				AddStyled("Game data", info.DataLocation, "Path")
			return a.out.RenderResult(report)
		},
	}
}

// requireContainerDir fails when the selected container vanished between
// selection and use
func requireContainerDir(a *app, c *types.Container) error {
	info, err := a.fs.Stat(c.RootPath)
	if err != nil || !info.IsDir() {
		return errors.Newf(errors.ErrNotFound, "container %s no longer exists", c.RootPath)
	}
	return nil
}
