// README: parkctl; CLI driving the client session core against a parkwatch-api.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "parkctl",
		Short:         "Track paid parking sessions from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newStartCmd(),
		newEndCmd(),
		newStatusCmd(),
		newHistoryCmd(),
		newWatchCmd(),
		newNearbyCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
