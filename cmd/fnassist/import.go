package fnassist

import (
	"fmt"

	"github.com/arthur-debert/fnassist/pkg/access"
	"github.com/arthur-debert/fnassist/pkg/archive"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/arthur-debert/fnassist/pkg/ui/view"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "import <source>",
		Short:   MsgImportShort,
		Long:    MsgImportLong,
		GroupID: "container",
		Args:    exactArgsMsg(1, "an archive or folder"),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cli.import")

			src, err := a.absPath(args[0])
			if err != nil {
				return err
			}
			// fail on a bad source before asking anything
			if _, err := archive.Detect(src); err != nil {
				return err
			}

			chosen, err := a.chooseContainer()
			if err != nil {
				return err
			}
			if chosen == nil {
				return a.cancelled()
			}
			if err := requireContainerDir(a, chosen); err != nil {
				return err
			}
			if err := access.Require(a.access); err != nil {
				return err
			}
			if err := a.allowWrite(); err != nil {
				return err
			}

			bar := a.progress("Importing", false)
			result, err := archive.Import(cmd.Context(), src, chosen.GameDataPath(), progressFunc(bar))
			stopProgress(bar)
			if err != nil {
				return err
			}
			logger.Info().Str("kind", string(result.Kind)).Int("files", result.Files).Msg("import finished")
			sendNotification(a, fmt.Sprintf("Imported %d files", result.Files))

			report := view.New("Assets imported", result).
				Add("Source", result.Source).
				Add("Kind", string(result.Kind)).
				AddStyled("Into", result.Target, "Path").
				Add("Files", fmt.Sprintf("%d", result.Files))
			return a.out.RenderResult(report)
		},
	}
}
