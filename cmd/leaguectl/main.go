package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "leaguectl",
		Short:         "Playhub league operations: schedules, deadlines, ratings and migrations",
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		newScheduleCmd(),
		newDeadlinesCmd(),
		newDeltaCmd(),
		newMigrateCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
