// Package main provides the leadboard API server and its maintenance commands
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "leadboard",
	Short: "Leadboard - lead, video and sales tracking API",
	Long: `Leadboard serves the lead board HTTP API with its realtime change feed
and maintenance scheduler.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, generateDataCmd, issueTokenCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
