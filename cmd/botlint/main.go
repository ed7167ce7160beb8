package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	lerrors "botlint/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err followed by any suggested fixes it carries.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var lintErr *lerrors.LintError
	if !errors.As(err, &lintErr) {
		return
	}
	for _, fix := range lintErr.SuggestedFixes {
		switch fix.Type {
		case lerrors.RunCommand:
			fmt.Fprintf(w, "  hint: %s: %s\n", fix.Description, fix.Command)
		case lerrors.EditConfig:
			fmt.Fprintf(w, "  hint: %s (setting %s)\n", fix.Description, fix.Setting)
		}
	}
}

// exitError ends the process with a specific code and no message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
