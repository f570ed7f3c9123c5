package cmd

import (
	"context"
	"fmt"

	"easel/internal/app"

	"github.com/spf13/cobra"
)

var (
	serveDebug      bool
	serveConfigPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the orchestrator as an MCP server over stdio",
	Long: `Starts the MCP server on stdin/stdout for AI assistant integration.

Every built-in operation is exposed as its own tool, alongside document
discovery, plugin listing and execution, registry re-scan and the execution
history. Log output goes to stderr so the protocol stream stays clean.

Configuration is read from config.yaml in the user config directory
(~/.config/easel by default); use --config-path to point elsewhere.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := app.NewApplication(app.NewConfig(serveDebug, false, serveConfigPath), GetVersion())
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.RunServer(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Custom configuration directory path")
}
