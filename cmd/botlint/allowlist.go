package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"botlint/internal/allowlist"
	"botlint/internal/paths"
)

var (
	allowEntry allowlist.Entry
	allowFile  string
)

var allowlistCmd = &cobra.Command{
	Use:   "allowlist",
	Short: "Manage suppressed issues",
	Long: `Manage the allowlist of accepted issues. An entry suppresses every issue
matching all of the criteria it sets (rule, category, line, contains).`,
}

var allowlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List allowlist entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := allowlist.Load(allowlistPath())
		if err != nil {
			return err
		}
		return writeOutput(cmd, "", formatAllowlistHuman(l))
	},
}

var allowlistAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an allowlist entry",
	Example: `  botlint allowlist add --category "Rate Limiting" --reason "gateway handles cooldowns"
  botlint allowlist add --rule code-quality --line 215`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := allowlistPath()
		l, err := allowlist.Load(path)
		if err != nil {
			return err
		}
		e, err := l.Add(allowEntry)
		if err != nil {
			return err
		}
		if err := l.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added entry %s to %s\n", e.ID, path)
		return nil
	},
}

var allowlistRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an allowlist entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := allowlistPath()
		l, err := allowlist.Load(path)
		if err != nil {
			return err
		}
		if err := l.Remove(args[0]); err != nil {
			return err
		}
		if err := l.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed entry %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(allowlistCmd)
	allowlistCmd.AddCommand(allowlistListCmd, allowlistAddCmd, allowlistRemoveCmd)
	allowlistCmd.PersistentFlags().StringVar(&allowFile, "file", "", "Allowlist file (default from allowlist.path)")

	f := allowlistAddCmd.Flags()
	f.StringVar(&allowEntry.ID, "id", "", "Entry ID (generated when empty)")
	f.StringVar(&allowEntry.Rule, "rule", "", "Analyzer pass name (see botlint rules)")
	f.StringVar(&allowEntry.Category, "category", "", "Issue category")
	f.IntVar(&allowEntry.Line, "line", 0, "Line number")
	f.StringVar(&allowEntry.Contains, "contains", "", "Substring of the offending code")
	f.StringVar(&allowEntry.Reason, "reason", "", "Why the issue is accepted")
}

func allowlistPath() string {
	p := allowFile
	if p == "" {
		p = app.cfg.Allowlist.Path
	}
	return paths.Resolve(app.root, p)
}
