package cli

import (
	"fmt"

	"github.com/rileyhilliard/sysdeck/internal/classify"
	"github.com/rileyhilliard/sysdeck/internal/config"
	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var rulesDefault bool

// rulesCmd prints the classification rule table
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the classification rules",
	Long: `Print the rules used to label network interfaces, filter GPUs, detect
development projects behind ports, and recognize system-critical processes.

Copy the default table, edit it, and point classify.rules at the copy to
override it.

Examples:
  sysdeck rules --default > rules.yaml
  sysdeck rules`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rulesCommand(cmd)
	},
}

func init() {
	rulesCmd.Flags().BoolVar(&rulesDefault, "default", false, "print the built-in table instead of the effective one")
	rootCmd.AddCommand(rulesCmd)
}

func rulesCommand(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if rulesDefault && !machineMode {
		_, err := out.Write(classify.DefaultRulesYAML())
		return err
	}

	path := ""
	if loadedConfig != nil && !rulesDefault {
		path = loadedConfig.Classify.Rules
	}
	rules, err := classify.LoadRules(path)
	if err != nil {
		return err
	}
	return emit(out, rules, func() error {
		data, err := yaml.Marshal(rules)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't encode the rules as YAML", "")
		}
		if path != "" {
			fmt.Fprintf(out, "# from %s\n", config.ExpandPath(path))
		}
		_, err = out.Write(data)
		return err
	})
}
