package cmd

import (
	"context"
	"fmt"
	"os"

	"easel/internal/app"
	"easel/internal/formatting"
	"easel/internal/normalize"

	"github.com/spf13/cobra"
)

var (
	discoverConfigPath string
	discoverFormat     string
)

var discoverCmd = &cobra.Command{
	Use:   "discover <document>",
	Short: "List all addressable objects in a document",
	Long: `Queries the document for every addressable object and prints each object's
identifier and bounding box. These identifiers are what operations and the
MCP tools address objects by.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseFormat(discoverFormat)
	if err != nil {
		return err
	}

	application, err := app.NewApplication(app.NewConfig(false, true, discoverConfigPath), GetVersion())
	if err != nil {
		return err
	}

	result, err := application.Dispatcher().Discover(context.Background(), args[0])
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("discovery failed (%s): %s", result.Classification, result.Message)
	}

	objects, _ := result.Payload["objects"].([]normalize.Object)
	return formatting.NewFormatter(os.Stdout, format).ObjectList(objects)
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringVar(&discoverConfigPath, "config-path", "", "Custom configuration directory path")
	discoverCmd.Flags().StringVarP(&discoverFormat, "output", "o", "table", "Output format (table, json, yaml)")
}
