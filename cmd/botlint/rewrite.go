package main

import (
	"github.com/spf13/cobra"

	"botlint/internal/rewriter"
)

var rewriteOutput string

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [file|-]",
	Short: "Print an improved variant of a bot source",
	Long: `Rewrite a bot source: hoist imports and the logger, name magic numbers,
replace the inline permission check with a shared helper, log errors in the
command handlers and add cooldowns. The input file is never modified.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		code, err := readSource(cmd, arg)
		if err != nil {
			return err
		}
		return writeOutput(cmd, rewriteOutput, rewriter.Rewrite(code))
	},
}

func init() {
	rootCmd.AddCommand(rewriteCmd)
	rewriteCmd.Flags().StringVarP(&rewriteOutput, "output", "o", "", "Write to a file instead of stdout")
}
