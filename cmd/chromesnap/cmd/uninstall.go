package cmd

import (
	"github.com/spf13/cobra"
)

// uninstallCmd removes an installed build and its registry record.
var uninstallCmd = &cobra.Command{
	Use:   "uninstall <version|revision>",
	Short: "Remove an installed snapshot build",
	Args:  cobra.ExactArgs(1),
	RunE: func(command *cobra.Command, args []string) error {
		ctx, stop := commandContext()
		defer stop()

		service, err := newService()
		if err != nil {
			return err
		}

		if err = service.Uninstall(ctx, args[0]); err != nil {
			return err
		}

		command.Printf("Uninstalled %s\n", args[0])

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(uninstallCmd)
}
