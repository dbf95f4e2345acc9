package cmd

import (
	"encoding/json"
	"fmt"

	"replcheck/pkg/model"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dumps the effective check suite to the console",
	Long: `The dump command loads the configuration (or the built-in check), merges its
includes, resolves every check against the suite defaults and prints the resolved checks
in YAML format. The output is itself a valid configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := loggerFrom(cmd)

		suite, err := loadSuite(logger)
		if err != nil {
			return err
		}
		// Checks are already resolved; printing the defaults too would apply
		// them a second time when the dump is loaded back.
		suite = &model.Suite{Checks: suite.Checks}

		if jsonOutput {
			jsonData, err := json.MarshalIndent(suite, "", "  ")
			if err != nil {
				return fmt.Errorf("error marshaling to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		}

		yamlData, err := yaml.Marshal(suite)
		if err != nil {
			return fmt.Errorf("error marshaling to YAML: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(yamlData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the suite in JSON format")
}
