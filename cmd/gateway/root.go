package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "OpenAI-compatible HTTP gateway for the Gemini API",
	Long: `gateway fronts Google's Gemini API with an OpenAI-compatible chat
completions surface, rotating requests across a pool of upstream API keys
and translating requests/responses between the two wire formats.

Configuration is read entirely from the environment; see SERVICE_*,
GEMINI_*, SECURITY_*, CACHE_*, and EVIDENCE_* variables.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
