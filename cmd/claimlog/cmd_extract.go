package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"claimlog/internal/claims"
	"claimlog/internal/document"
	"claimlog/internal/engine"
)

// extractOutput is the --json shape: the wire result plus the optional
// syntax verdict.
type extractOutput struct {
	claims.ExtractionResult
	Valid *bool `json:"valid,omitempty"`
}

func newExtractCmd(a *app) *cobra.Command {
	var (
		view   string
		check  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Compile one credential into a Prolog statement",
		Long: `Reads a JSON or YAML credential from a file, or from stdin when the
argument is "-" or omitted, and prints the compiled statement.

Exits with status 1 when the claim cannot be compiled.`,
		Example: `  claimlog extract person.json
  claimlog extract --view retract - < person.yaml
  claimlog extract --json --check rule.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uv, err := parseView(view)
			if err != nil {
				return err
			}

			var doc any
			if len(args) == 0 || args[0] == "-" {
				doc, err = document.Read(cmd.InOrStdin(), "")
			} else {
				doc, err = document.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			compiler, err := a.compiler()
			if err != nil {
				return err
			}
			stmt, extractErr := compiler.Extract(doc, uv)
			out := extractOutput{ExtractionResult: claims.NewResult(stmt, extractErr)}

			if check && extractErr == nil {
				checker, err := a.checker()
				if err != nil {
					return err
				}
				defer engine.Close(checker)
				valid := checker.CheckSyntax(cmd.Context(), stmt.Fact)
				out.Valid = &valid
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				if err := enc.Encode(out); err != nil {
					return err
				}
			} else if extractErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), out.Error)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), out.Fact)
				if out.Valid != nil && !*out.Valid {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: statement did not pass the syntax check")
				}
			}

			if extractErr != nil {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "update view: assert, asserta, assertz or retract (overrides the claim)")
	cmd.Flags().BoolVar(&check, "check", false, "run the syntax checker on the statement")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func parseView(s string) (claims.UpdateView, error) {
	v, ok := claims.ParseUpdateView(s)
	if !ok {
		return "", fmt.Errorf("invalid --view %q (valid: %v)", s, claims.UpdateViews())
	}
	return v, nil
}
