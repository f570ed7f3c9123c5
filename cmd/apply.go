package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"easel/internal/app"
	"easel/internal/dispatch"

	"github.com/spf13/cobra"
)

var (
	applyConfigPath string
	applyOutput     string
	applyTargets    []string
	applyParams     []string
)

var applyCmd = &cobra.Command{
	Use:   "apply <operation> <document>",
	Short: "Apply a built-in operation to a document",
	Long: `Compiles the operation into a batch action chain and executes it. The
document is discovered first, so --target identifiers are validated against
what the document actually contains.

The result document is written to --output, or back to the input when no
output is given. Use 'easel ops' for the operation catalog.`,
	Args: cobra.ExactArgs(2),
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	params, err := parseParams(applyParams)
	if err != nil {
		return err
	}

	application, err := app.NewApplication(app.NewConfig(false, true, applyConfigPath), GetVersion())
	if err != nil {
		return err
	}

	ctx := context.Background()
	operation, inputPath := args[0], args[1]

	// One-shot invocations have no prior discovery call; do it here so the
	// target identifiers can be validated.
	if len(applyTargets) > 0 {
		discovery, err := application.Dispatcher().Discover(ctx, inputPath)
		if err != nil {
			return err
		}
		if !discovery.Success {
			return fmt.Errorf("discovery failed (%s): %s", discovery.Classification, discovery.Message)
		}
	}

	result, err := application.Dispatcher().Dispatch(ctx, dispatch.Request{
		Operation:  operation,
		Parameters: params,
		Targets:    applyTargets,
		InputPath:  inputPath,
		OutputPath: applyOutput,
	})
	if err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(jsonData))
	if !result.Success {
		return fmt.Errorf("operation failed (%s)", result.Classification)
	}
	return nil
}

// parseParams turns repeated name=value flags into a parameter map. Values
// that parse as numbers or booleans are passed through typed, everything else
// stays a string.
func parseParams(pairs []string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected name=value", pair)
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			params[name] = f
		} else if b, err := strconv.ParseBool(value); err == nil {
			params[name] = b
		} else {
			params[name] = value
		}
	}
	return params, nil
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVar(&applyConfigPath, "config-path", "", "Custom configuration directory path")
	applyCmd.Flags().StringVar(&applyOutput, "output", "", "Where to write the result document")
	applyCmd.Flags().StringArrayVar(&applyTargets, "target", nil, "Object identifier to operate on (repeatable)")
	applyCmd.Flags().StringArrayVar(&applyParams, "param", nil, "Operation parameter as name=value (repeatable)")
}
