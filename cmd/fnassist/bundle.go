package fnassist

import (
	"fmt"

	"github.com/arthur-debert/fnassist/pkg/download"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/arthur-debert/fnassist/pkg/provision"
	"github.com/arthur-debert/fnassist/pkg/ui/view"
	"github.com/spf13/cobra"
)

func newNormalizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "normalize",
		Short:   MsgNormalizeShort,
		GroupID: "app",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.normalizer().ResolveCanonicalAppPath()
			if err != nil {
				return err
			}
			report := view.New("App bundle", map[string]string{"path": path}).
				AddStyled("Path", path, "Path")
			return a.out.RenderResult(report)
		},
	}
}

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "open",
		Short:   MsgOpenShort,
		GroupID: "app",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.normalizer().Open(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.RenderMessage(fmt.Sprintf(MsgOpened, path))
		},
	}
}

func newDeleteAppCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete-app",
		Short:   MsgDeleteAppShort,
		GroupID: "app",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := a.normalizer()
			ok, err := a.confirm(fmt.Sprintf("Delete %s and any staged copies?", n.CanonicalPath()))
			if err != nil {
				return err
			}
			if !ok {
				return a.cancelled()
			}

			removed, err := n.DeleteApp()
			if err != nil {
				return err
			}
			rows := make([][]string, len(removed))
			for i, p := range removed {
				rows[i] = []string{p}
			}
			report := view.New("App bundle deleted", map[string][]string{"removed": removed}).
				WithTable([]string{"Removed"}, rows)
			return a.out.RenderResult(report)
		},
	}
}

// patchResult is the structured form of the patch command's outcome
type patchResult struct {
	Bundle       string `json:"bundle" yaml:"bundle"`
	Profile      string `json:"profile" yaml:"profile"`
	Entitlements bool   `json:"entitlements_added" yaml:"entitlements_added"`
}

func newPatchCmd(a *app) *cobra.Command {
	var entitlements bool

	cmd := &cobra.Command{
		Use:     "patch",
		Short:   MsgPatchShort,
		GroupID: "app",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cli.patch")

			bundlePath, err := a.normalizer().ResolveCanonicalAppPath()
			if err != nil {
				return err
			}

			fetcher := download.New(a.cfg.Downloads.ChunkSize, a.cfg.Feeds.UserAgent)
			installer := provision.NewInstaller(fetcher, a.cfg.Feeds.ProvisionURL, a.cfg.Bundle.InnerBundle)
			profile, err := installer.Install(cmd.Context(), bundlePath)
			if err != nil {
				return err
			}

			result := patchResult{Bundle: bundlePath, Profile: profile}
			if entitlements {
				if result.Entitlements, err = installer.PatchInstalled(bundlePath); err != nil {
					return err
				}
			}
			logger.Info().Str("profile", profile).Bool("entitlements", result.Entitlements).Msg("bundle patched")

			report := view.New("Provisioning profile installed", result).
				AddStyled("Bundle", bundlePath, "Path").
				AddStyled("Profile", profile, "Path")
			if entitlements {
				added := "already present"
				if result.Entitlements {
					added = "added"
				}
				report.Add("Entitlements", added)
			}
			return a.out.RenderResult(report)
		},
	}
	cmd.Flags().BoolVar(&entitlements, "entitlements", false, MsgFlagEntitlements)
	return cmd
}
