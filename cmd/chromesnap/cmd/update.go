package cmd

import (
	"github.com/spf13/cobra"
)

// updateCmd rebuilds the catalog from the remote listings.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh the catalog of available builds",
	Args:  cobra.NoArgs,
	RunE: func(command *cobra.Command, _ []string) error {
		ctx, stop := commandContext()
		defer stop()

		service, err := newService()
		if err != nil {
			return err
		}

		entries, err := service.RefreshCatalog(ctx)
		if err != nil {
			return err
		}

		versioned := 0
		for _, entry := range entries {
			if entry.HasVersion {
				versioned++
			}
		}

		command.Printf("Catalog refreshed: %d builds, %d with a known version\n",
			len(entries), versioned)

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(updateCmd)
}
