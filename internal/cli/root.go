// Package cli implements the mindwell command-line interface using Cobra.
// Each subcommand runs against the local daemon's store directly.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mindwell",
	Short: "MindWell — local mental wellness companion",
	Long: `MindWell tracks moods, mindfulness, and standardized check-ins,
and turns consistency into progress: XP, levels, streaks, achievements,
and daily challenges. All data stays on your machine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
