package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "roomcast-cli",
	Short: "Roomcast CLI tool",
	Long: `Roomcast CLI is a command-line interface for operating a roomcast
chat service.

Available commands:
  messages    List recorded message history
  rooms       List rooms and presence counts

Use "roomcast-cli [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of the roomcast server")
}
