// Package cli implements the LifeIO command-line interface using Cobra.
// Local commands run against the configured store directly; serve starts
// the HTTP API.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var userID string

var rootCmd = &cobra.Command{
	Use:   "lifeio",
	Short: "LifeIO: track activities, sleep and money, earn XP",
	Long: `LifeIO is a personal life-tracking backend.
Log time-boxed activities, sleep sessions and daily finances; every minute
of activity earns XP scaled by its category multiplier.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", os.Getenv("LIFEIO_USER"),
		"User id for local commands (env LIFEIO_USER)")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
