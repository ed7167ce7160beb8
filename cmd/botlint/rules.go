package main

import (
	"github.com/spf13/cobra"

	"botlint/internal/analyzer"
)

var rulesFormat string

// ruleInfo is the encoded form of an analyzer pass.
type ruleInfo struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	Description string `json:"description" yaml:"description" toml:"description"`
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the analyzer passes in execution order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		passes := analyzer.Passes()
		rules := make([]ruleInfo, len(passes))
		for i, p := range passes {
			rules[i] = ruleInfo{Name: p.Name, Description: p.Description}
		}

		doc := struct {
			Rules []ruleInfo `json:"rules" yaml:"rules" toml:"rules"`
		}{rules}
		out, err := formatDocument(doc, rulesFormat, func() string { return formatRulesHuman(rules) })
		if err != nil {
			return err
		}
		return writeOutput(cmd, "", out)
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().StringVarP(&rulesFormat, "format", "f", "human", "Output format: human, json, yaml, toml")
}
