// Package cli implements the paylot command line.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "paylot",
	Short: "PAYLOT lead capture backend",
	Long: `PAYLOT collects landing-page leads for the forex rebate platform
and serves the dashboard, lead export and health endpoints.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(versionCmd)
}
