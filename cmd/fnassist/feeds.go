package fnassist

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/fnassist/internal/version"
	"github.com/arthur-debert/fnassist/pkg/download"
	"github.com/arthur-debert/fnassist/pkg/feed"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/arthur-debert/fnassist/pkg/ui/view"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newDownloadCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:     "download [name]",
		Short:   MsgDownloadShort,
		Long:    "Without a name, list what the feed offers. With one, download the closest match.",
		GroupID: "feeds",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cli.download")

			client, closeCache := a.feedClient()
			defer closeCache()

			items, err := client.Listing(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return a.out.RenderResult(listingReport(items))
			}

			item, err := feed.FindItem(items, args[0])
			if err != nil {
				return err
			}
			dest := filepath.Join(a.cfg.Downloads.Dir, download.FileNameFromURL(item.DownloadURL, item.Name))
			logger.Info().Str("item", item.Name).Str("dest", dest).Msg("downloading")

			bar := a.progress(item.Name, true)
			result, err := download.New(a.cfg.Downloads.ChunkSize, a.cfg.Feeds.UserAgent).
				Download(cmd.Context(), item.DownloadURL, dest, progressFunc(bar))
			stopProgress(bar)
			if err != nil {
				return err
			}
			sendNotification(a, fmt.Sprintf(MsgDownloaded, item.Name))

			report := view.New(fmt.Sprintf(MsgDownloaded, item.Name), result).
				AddStyled("File", result.Path, "Path").
				Add("Size", humanize.Bytes(uint64(result.Bytes)))
			return a.out.RenderResult(report)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", MsgFlagOut)
	bindConfig(cmd, "out", "downloads.dir")
	return cmd
}

func listingReport(items []feed.Item) *view.Report {
	rows := make([][]string, len(items))
	for i, item := range items {
		size := "?"
		if item.Size > 0 {
			size = humanize.Bytes(uint64(item.Size))
		}
		rows[i] = []string{item.Name, size}
	}
	return view.New(fmt.Sprintf("%d download(s) available", len(items)), items).
		WithTable([]string{"Name", "Size"}, rows)
}

func newUpdateCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "update-check",
		Short:   MsgUpdateCheckShort,
		GroupID: "feeds",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeCache := a.feedClient()
			defer closeCache()

			info, err := client.CheckForUpdate(cmd.Context(), version.Version)
			if err != nil {
				return err
			}
			if !info.Available && !a.format.Structured() {
				return a.out.RenderMessage(fmt.Sprintf(MsgUpToDate, info.CurrentVersion))
			}

			report := view.New("A new fnassist release is available", info).
				Add("Current", info.CurrentVersion).
				AddStyled("Latest", info.LatestVersion, "Success")
			if info.ReleaseURL != "" {
				report.AddStyled("Release", info.ReleaseURL, "Path")
			}
			return a.out.RenderResult(report)
		},
	}
}

func newArchiveInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "archive-info",
		Short:   MsgArchiveInfoShort,
		GroupID: "feeds",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeCache := a.feedClient()
			defer closeCache()

			info, err := client.ArchiveInfo(cmd.Context())
			if err != nil {
				return err
			}
			if info == nil {
				return a.out.RenderMessage(MsgNoArchive)
			}

			keys := make([]string, 0, len(info))
			for k := range info {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			report := view.New("Latest archived game files", info)
			for _, k := range keys {
				report.Add(k, fmt.Sprint(info[k]))
			}
			return a.out.RenderResult(report)
		},
	}
}
