package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"easel/internal/app"
	"easel/internal/formatting"

	"github.com/spf13/cobra"
)

var (
	pluginsConfigPath string
	pluginsFormat     string
	pluginsCategory   string

	pluginRunOutput string
	pluginRunParams []string
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect and run the tool's installed plugins",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed plugins",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatting.ParseFormat(pluginsFormat)
		if err != nil {
			return err
		}

		application, err := app.NewApplication(app.NewConfig(false, true, pluginsConfigPath), GetVersion())
		if err != nil {
			return err
		}

		descriptors := application.Registry().List(pluginsCategory)
		return formatting.NewFormatter(os.Stdout, format).PluginList(descriptors)
	},
}

var pluginsShowCmd = &cobra.Command{
	Use:   "show <plugin-id>",
	Short: "Show one plugin's parameter schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatting.ParseFormat(pluginsFormat)
		if err != nil {
			return err
		}

		application, err := app.NewApplication(app.NewConfig(false, true, pluginsConfigPath), GetVersion())
		if err != nil {
			return err
		}

		descriptor, err := application.Registry().Lookup(args[0])
		if err != nil {
			return err
		}
		return formatting.NewFormatter(os.Stdout, format).PluginDetail(descriptor)
	},
}

var pluginsRunCmd = &cobra.Command{
	Use:   "run <plugin-id> <document>",
	Short: "Run a plugin against a document",
	Long: `Runs the named plugin on the document. Parameters are given as repeated
--param name=value flags; omitted parameters use their declared defaults.
The result document is written to --output, or back to the input when no
output is given.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseParams(pluginRunParams)
		if err != nil {
			return err
		}

		application, err := app.NewApplication(app.NewConfig(false, true, pluginsConfigPath), GetVersion())
		if err != nil {
			return err
		}

		result, err := application.Dispatcher().ExecutePlugin(context.Background(), args[0], params, args[1], pluginRunOutput)
		if err != nil {
			return err
		}

		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(jsonData))
		if !result.Success {
			return fmt.Errorf("plugin execution failed (%s)", result.Classification)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
	pluginsCmd.AddCommand(pluginsListCmd)
	pluginsCmd.AddCommand(pluginsShowCmd)
	pluginsCmd.AddCommand(pluginsRunCmd)

	pluginsCmd.PersistentFlags().StringVar(&pluginsConfigPath, "config-path", "", "Custom configuration directory path")
	pluginsListCmd.Flags().StringVarP(&pluginsFormat, "output", "o", "table", "Output format (table, json, yaml)")
	pluginsListCmd.Flags().StringVar(&pluginsCategory, "category", "", "Only list plugins in this category")
	pluginsShowCmd.Flags().StringVarP(&pluginsFormat, "output", "o", "table", "Output format (table, json, yaml)")
	pluginsRunCmd.Flags().StringVar(&pluginRunOutput, "output", "", "Where to write the result document")
	pluginsRunCmd.Flags().StringArrayVar(&pluginRunParams, "param", nil, "Plugin parameter as name=value (repeatable)")
}
