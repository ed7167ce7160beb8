package main

import (
	"github.com/spf13/cobra"

	"botlint/internal/advice"
)

var adviceFormat string

// adviceDocument is the encoded form of the advice catalogue.
type adviceDocument struct {
	RefactoringSuggestions []advice.Suggestion  `json:"refactoring_suggestions" yaml:"refactoring_suggestions" toml:"refactoring_suggestions"`
	SecurityFixes          []advice.SecurityFix `json:"security_fixes" yaml:"security_fixes" toml:"security_fixes"`
}

var adviceCmd = &cobra.Command{
	Use:   "advice",
	Short: "Show refactoring suggestions and security fixes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc := adviceDocument{
			RefactoringSuggestions: advice.RefactoringSuggestions(),
			SecurityFixes:          advice.SecurityFixes(),
		}
		out, err := formatDocument(doc, adviceFormat, func() string { return formatAdviceHuman(doc) })
		if err != nil {
			return err
		}
		return writeOutput(cmd, "", out)
	},
}

func init() {
	rootCmd.AddCommand(adviceCmd)
	adviceCmd.Flags().StringVarP(&adviceFormat, "format", "f", "human", "Output format: human, json, yaml, toml")
}
