package cmd

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/okonechnikov/chromesnap/internal/download"
	"github.com/okonechnikov/chromesnap/internal/service/keeper"
)

// installCmd downloads and installs the build matching the query.
var installCmd = &cobra.Command{
	Use:   "install <version|revision|latest>",
	Short: "Download and install a snapshot build",
	Args:  cobra.ExactArgs(1),
	RunE: func(command *cobra.Command, args []string) error {
		ctx, stop := commandContext()
		defer stop()

		var progressShown bool

		service, err := newService(keeper.WithProgress(func(p download.Progress) {
			progressShown = true

			command.Printf("\rDownloading %s of %s (%.1f%%)",
				humanize.Bytes(uint64(p.Transferred)), humanize.Bytes(uint64(p.Total)), p.Percent)
		}))
		if err != nil {
			return err
		}

		record, err := service.Install(ctx, args[0])
		if progressShown {
			command.Println()
		}

		if err != nil {
			return err
		}

		command.Printf("Installed revision %s at %s (%s)\n",
			record.Revision, record.Path, humanize.Bytes(uint64(record.Size)))

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(installCmd)
}
