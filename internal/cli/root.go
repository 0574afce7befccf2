package cli

import (
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagRoot     string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "revisit",
	Short: "Resurface notes you have not opened in a while",
	Long: "Revisit tracks when each note in a workspace was last opened and picks stale ones for review,\n" +
		"favoring the oldest, with daily and weekly review goals.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default $REVISIT_HOME/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "workspace root (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(ignoreCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
