package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"claimlog/internal/batch"
	"claimlog/internal/engine"
	"claimlog/internal/logging"
)

// runnerFlags are shared by batch and watch.
type runnerFlags struct {
	view        string
	check       bool
	concurrency int
}

func (f *runnerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.view, "view", "", "update view applied to every claim")
	cmd.Flags().BoolVar(&f.check, "check", false, "run the syntax checker on every statement")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "files processed at once (default: batch.concurrency)")
}

// runner builds a batch.Runner. The returned closer releases the checker.
func (a *app) runner(f *runnerFlags, category logging.Category) (*batch.Runner, func(), error) {
	uv, err := parseView(f.view)
	if err != nil {
		return nil, nil, err
	}
	compiler, err := a.compiler()
	if err != nil {
		return nil, nil, err
	}

	concurrency := f.concurrency
	if concurrency <= 0 {
		concurrency = a.cfg.Batch.Concurrency
	}
	opts := []batch.Option{
		batch.WithUpdateView(uv),
		batch.WithConcurrency(concurrency),
		batch.WithLogger(a.logger(category)),
	}

	closer := func() {}
	if f.check {
		checker, err := a.checker()
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, batch.WithChecker(checker))
		closer = func() { _ = engine.Close(checker) }
	}
	return batch.NewRunner(compiler, opts...), closer, nil
}

func newBatchCmd(a *app) *cobra.Command {
	var flags runnerFlags

	cmd := &cobra.Command{
		Use:   "batch <path>...",
		Short: "Compile many credential files",
		Long: `Compiles every credential file given, expanding directories to their
*.json, *.yaml and *.yml files. Prints one JSON result per line in input
order and a summary on stderr.

Exits with status 1 if any file fails to compile.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, closeRunner, err := a.runner(&flags, logging.CategoryBatch)
			if err != nil {
				return err
			}
			defer closeRunner()

			results, err := runner.Run(cmd.Context(), args)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, res := range results {
				if err := enc.Encode(res); err != nil {
					return err
				}
			}

			s := batch.Summarize(results)
			fmt.Fprintf(cmd.ErrOrStderr(), "%d files: %d succeeded, %d failed", s.Total, s.Succeeded, s.Failed)
			if flags.check {
				fmt.Fprintf(cmd.ErrOrStderr(), ", %d invalid", s.Invalid)
			}
			fmt.Fprintln(cmd.ErrOrStderr())

			if s.Failed > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var flags runnerFlags

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Recompile credential files as they change",
		Long: `Watches a directory and prints one JSON result per line each time a
credential file in it is created or modified. Runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, closeRunner, err := a.runner(&flags, logging.CategoryWatch)
			if err != nil {
				return err
			}
			defer closeRunner()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := batch.NewWatcher(args[0], runner, a.cfg.Watch.GetDebounce())
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			defer w.Stop()
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("failed to watch %s: %w", args[0], err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for res := range w.Results() {
				if err := enc.Encode(res); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
