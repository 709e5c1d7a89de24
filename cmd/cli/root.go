// Package cli contains the reliance command line entry points.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reliance",
	Short: "Reliance productivity backend",
	Long: `Reliance serves the task, value zone and authentication API.

Configuration is read from the environment, optionally seeded from a .env file.
Run "reliance serve" to start the HTTP server or "reliance migrate" to manage
the Postgres schema.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
