package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "mentor",
	Short: "AI code mentor admission controller",
	Long: `Mentor watches code edits and decides when each one deserves an
expensive AI analysis call: run now, serve from cache, or suppress.`,
	Version: Version,
}

var (
	rulesPath string
	sessionID string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "path to a YAML trigger rules file (default: built-in rules)")
	rootCmd.PersistentFlags().StringVar(&sessionID, "session", "default", "mentor session identifier")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
