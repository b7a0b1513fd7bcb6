// Command claimlog compiles verifiable-credential claims into Prolog
// statements.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"claimlog/internal/claims"
	"claimlog/internal/config"
	"claimlog/internal/engine"
	"claimlog/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// exitError carries a process exit status without an error message; the
// command has already reported the failure.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// app holds state shared by all subcommands of one invocation.
type app struct {
	cfgFile string
	verbose bool

	cfg  *config.Config
	logs *logging.Logger
}

func (a *app) logger(category logging.Category) *zap.Logger {
	return a.logs.Get(category)
}

func (a *app) compiler() (*claims.Compiler, error) {
	return claims.New(
		claims.WithLogger(a.logger(logging.CategoryCompiler)),
		claims.WithDefaultUpdateView(a.cfg.DefaultUpdateView()),
	)
}

func (a *app) checker() (engine.Checker, error) {
	return engine.New(a.cfg.Engine, a.logger(logging.CategoryEngine))
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "claimlog",
		Short: "Compile credential claims into Prolog statements",
		Long: `claimlog turns the claim carried in a verifiable credential's
credentialSubject into a Prolog statement: a fact, rule or query wrapped
in an assert/asserta/assertz/retract directive.

Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (CLAIMLOG_*)
  3. Config file (~/.claimlog/config.yaml)
  4. Defaults`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			a.cfg = cfg

			logs, err := logging.New(cfg.Logging, a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logs = logs
			if cfg.Source != "" {
				a.logger(logging.CategoryCLI).Debug("using config file", zap.String("path", cfg.Source))
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.logs.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.claimlog/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newExtractCmd(a),
		newCheckCmd(a),
		newBatchCmd(a),
		newWatchCmd(a),
		newRegressCmd(a),
		newTypesCmd(a),
		newSchemaCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "claimlog %s\n", version)
		},
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
