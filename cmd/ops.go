package cmd

import (
	"os"

	"easel/internal/chain"
	"easel/internal/formatting"

	"github.com/spf13/cobra"
)

var opsFormat string

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List the built-in operation catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatting.ParseFormat(opsFormat)
		if err != nil {
			return err
		}
		return formatting.NewFormatter(os.Stdout, format).OperationList(chain.Operations())
	},
}

func init() {
	rootCmd.AddCommand(opsCmd)

	opsCmd.Flags().StringVarP(&opsFormat, "output", "o", "table", "Output format (table, json, yaml)")
}
