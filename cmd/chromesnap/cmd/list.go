package cmd

import (
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/okonechnikov/chromesnap/internal/catalog"
)

var (
	// listAvailable switches the listing to the remote catalog.
	listAvailable bool
	// listLimit caps how many catalog entries are printed.
	listLimit int

	// listCmd prints installed builds, or the catalog with --available.
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List installed builds or the available catalog",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			service, err := newService()
			if err != nil {
				return err
			}

			if listAvailable {
				entries, availErr := service.Available(ctx)
				if availErr != nil {
					return availErr
				}

				printCatalog(command, entries)

				return nil
			}

			installed, err := service.Installed(ctx)
			if err != nil {
				return err
			}

			if len(installed) == 0 {
				command.Println("No builds installed.")

				return nil
			}

			keys := make([]string, 0, len(installed))
			for key := range installed {
				keys = append(keys, key)
			}

			sort.Slice(keys, func(i, j int) bool {
				return catalog.CompareVersions(keys[i], keys[j]) > 0
			})

			writer := tabwriter.NewWriter(command.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, key := range keys {
				record := installed[key]
				//nolint:errcheck // Best-effort terminal output.
				writer.Write([]byte(key + "\t" + record.Revision + "\t" +
					humanize.Bytes(uint64(record.Size)) + "\t" +
					humanize.Time(record.InstalledAt) + "\n"))
			}

			return writer.Flush()
		},
	}
)

// printCatalog renders catalog entries up to the configured limit.
func printCatalog(command *cobra.Command, entries catalog.Catalog) {
	shown := 0

	for _, entry := range entries {
		if listLimit > 0 && shown >= listLimit {
			break
		}

		if entry.HasVersion {
			command.Printf("%s\trevision %s\t%s\n", entry.Version, entry.Revision, entry.Channel)
		} else {
			command.Printf("revision %s\n", entry.Revision)
		}

		shown++
	}

	if remaining := len(entries) - shown; remaining > 0 {
		command.Printf("... and %d more (raise --limit to see them)\n", remaining)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	listCmd.Flags().BoolVarP(&listAvailable, "available", "a", false, "list the catalog instead of installed builds")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max catalog entries to print, 0 for all")

	rootCmd.AddCommand(listCmd)
}
