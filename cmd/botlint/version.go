package main

import (
	"github.com/spf13/cobra"

	"botlint/internal/version"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := formatDocument(version.Get(), versionFormat, version.Full)
		if err != nil {
			return err
		}
		return writeOutput(cmd, "", out)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "human", "Output format: human, json, yaml, toml")
}
