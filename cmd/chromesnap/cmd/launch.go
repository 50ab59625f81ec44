package cmd

import (
	"github.com/spf13/cobra"
)

// launchCmd starts an installed build, passing through browser arguments.
var launchCmd = &cobra.Command{
	Use:   "launch <version|revision> [-- browser args]",
	Short: "Run an installed snapshot build",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(command *cobra.Command, args []string) error {
		ctx, stop := commandContext()
		defer stop()

		service, err := newService()
		if err != nil {
			return err
		}

		if err = service.Launch(ctx, args[0], args[1:]); err != nil {
			return err
		}

		command.Printf("Launched %s\n", args[0])

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(launchCmd)
}
