package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"claimlog/internal/engine"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [statement...]",
		Short: "Check whether statements are valid Prolog",
		Long: `Runs the configured syntax checker (engine.kind) on each statement.
Without arguments, statements are read from stdin, one per line.

Exits with status 1 if any statement is rejected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			statements := args
			if len(statements) == 0 {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					if line := strings.TrimSpace(scanner.Text()); line != "" {
						statements = append(statements, line)
					}
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read statements: %w", err)
				}
			}

			checker, err := a.checker()
			if err != nil {
				return err
			}
			defer engine.Close(checker)

			hasError := false
			for _, stmt := range statements {
				if checker.CheckSyntax(cmd.Context(), stmt) {
					fmt.Fprintf(cmd.OutOrStdout(), "OK     %s\n", stmt)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "ERROR  %s\n", stmt)
					hasError = true
				}
			}
			if hasError {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}
