// Command animai serves the virtual pet egg API.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is the YAML file; empty runs on defaults and ANIMAI_* variables
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "animai",
	Short: "Virtual pet egg backend",
	Long: `animai hosts eggs that grow and pick up a personality from the way
their owner talks to them, and hatch into pets once grown.

Configuration is read from a YAML file and ANIMAI_* environment
variables, e.g. ANIMAI_SERVER_PORT=9000 or ANIMAI_DATABASE_DRIVER=sqlite.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}
