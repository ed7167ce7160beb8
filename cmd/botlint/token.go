package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"botlint/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Create API tokens",
	Long: `Create bearer tokens for the HTTP API. Only the bcrypt hash goes into the
configuration (server.tokenHash); clients send the token itself.`,
}

var tokenGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new token and its hash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := auth.GenerateToken()
		if err != nil {
			return err
		}
		hash, err := auth.HashToken(token)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Token: %s\n", token)
		fmt.Fprintf(out, "Hash:  %s\n\n", hash)
		fmt.Fprintln(out, "Set server.tokenHash to the hash (or BOTLINT_SERVER_TOKENHASH).")
		fmt.Fprintln(out, "The token is shown once; store it now.")
		return nil
	},
}

var tokenHashCmd = &cobra.Command{
	Use:   "hash [token|-]",
	Short: "Hash an existing token",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := ""
		if len(args) == 1 && args[0] != "-" {
			token = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read token from stdin: %w", err)
			}
			token = line
		}

		hash, err := auth.HashToken(strings.TrimSpace(token))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenGenerateCmd, tokenHashCmd)
}
