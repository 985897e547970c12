// Package cmd implements the pulse-collector command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "pulse-collector",
	Short: "Collects developer community posts into Postgres",
	Long: `pulse-collector polls a set of community sources (Dev.to, RSS feeds,
YouTube, GitHub), normalizes what it finds into a single posts table, and
keeps an append-only audit log of every collection run.`,
	SilenceUsage: true,
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (optional; env vars and defaults apply otherwise)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "use in-memory stores instead of Postgres")
}
