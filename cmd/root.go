package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the easel application.
var rootCmd = &cobra.Command{
	Use:   "easel",
	Short: "Action-chain orchestrator for a vector-editing tool",
	Long: `easel turns high-level vector editing requests into batch action chains
for an external vector-editing tool (Inkscape), executes them under
concurrency and timeout limits, and reports uniform structured results.

It also maintains a registry of the tool's installed plugins, parsed from
their .inx manifests, and can expose everything as MCP tools over stdio
for AI assistant integration ('easel serve').`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "easel version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
