// Package logging builds the zap logger used across claimlog.
// Each subsystem logs through a named child logger for its Category; a
// category switched off in config gets a no-op logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"claimlog/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategoryCompiler Category = "compiler" // claim extraction
	CategoryEngine   Category = "engine"   // syntax checker and swipl process
	CategoryBatch    Category = "batch"    // multi-file runs
	CategoryWatch    Category = "watch"    // directory watcher
	CategoryRegress  Category = "regress"  // conformance batteries
	CategoryCLI      Category = "cli"      // command plumbing
)

// Categories lists every category in a stable order.
func Categories() []Category {
	return []Category{CategoryCompiler, CategoryEngine, CategoryBatch, CategoryWatch, CategoryRegress, CategoryCLI}
}

// Logger is a root logger plus the category switches it was built with.
type Logger struct {
	root *zap.Logger
	cfg  config.LoggingConfig
}

// New builds a root logger from cfg. verbose forces debug level.
func New(cfg config.LoggingConfig, verbose bool) (*Logger, error) {
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	root, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &Logger{root: root, cfg: cfg}, nil
}

// Wrap adopts an existing zap logger, mainly for tests.
func Wrap(root *zap.Logger, cfg config.LoggingConfig) *Logger {
	if root == nil {
		root = zap.NewNop()
	}
	return &Logger{root: root, cfg: cfg}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger { return Wrap(zap.NewNop(), config.LoggingConfig{}) }

// Get returns the named logger for category, or a no-op logger when the
// category is disabled.
func (l *Logger) Get(category Category) *zap.Logger {
	if l == nil || !l.cfg.IsCategoryEnabled(string(category)) {
		return zap.NewNop()
	}
	return l.root.Named(string(category))
}

// Root returns the uncategorized logger.
func (l *Logger) Root() *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.root
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func (l *Logger) Sync() {
	if l != nil {
		_ = l.root.Sync()
	}
}

func parseLevel(s string) (zapcore.Level, error) {
	switch s {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
}
