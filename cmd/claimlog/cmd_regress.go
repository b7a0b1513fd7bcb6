package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"claimlog/internal/engine"
	"claimlog/internal/logging"
	"claimlog/internal/regression"
)

func newRegressCmd(a *app) *cobra.Command {
	var (
		check    bool
		failFast bool
	)

	cmd := &cobra.Command{
		Use:   "regress [battery.yaml]",
		Short: "Run a conformance battery against the compiler",
		Long: `Runs every case of a regression battery and compares the compiled
statement or error message with the expected one. Without an argument the
battery is read from .claimlog/regression/battery.yaml.

Exits with status 1 if any case fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := regression.DefaultBatteryPath(".")
			if len(args) == 1 {
				path = args[0]
			}
			battery, err := regression.LoadBattery(path)
			if err != nil {
				return err
			}

			compiler, err := a.compiler()
			if err != nil {
				return err
			}
			opts := regression.Options{
				FailFast: failFast,
				Logger:   a.logger(logging.CategoryRegress),
			}
			if check {
				checker, err := a.checker()
				if err != nil {
					return err
				}
				defer engine.Close(checker)
				opts.Checker = checker
			}

			results, err := regression.RunBattery(cmd.Context(), battery, compiler, opts)
			if err != nil {
				return err
			}

			for _, r := range results {
				if r.Success {
					fmt.Fprintf(cmd.OutOrStdout(), "PASS  %s\n", r.CaseID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s: %s\n", r.CaseID, r.Error)
				}
			}
			passed := regression.Passed(results)
			fmt.Fprintf(cmd.ErrOrStderr(), "%d/%d cases passed\n", passed, len(battery.Cases))

			if passed != len(battery.Cases) {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "also run the syntax checker on every produced fact")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first failing case")
	return cmd
}
