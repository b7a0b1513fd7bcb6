// Package engine answers whether a string is well-formed Prolog.
//
// Two checkers are provided. Reader reads terms with an embedded ISO Prolog
// interpreter and needs no external runtime. Process delegates to a
// long-lived swipl subprocess for SWI-Prolog's exact verdicts. Both are
// advisory: a false result never changes what the claim compiler produces.
package engine

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"claimlog/internal/config"
)

// Checker reports whether statement is syntactically valid Prolog.
// Implementations return false on any internal fault instead of an error.
type Checker interface {
	CheckSyntax(ctx context.Context, statement string) bool
}

// New builds the checker selected by cfg.Kind.
func New(cfg config.EngineConfig, logger *zap.Logger) (Checker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Kind {
	case "", config.EngineReader:
		return NewReader(), nil
	case config.EngineSWIPL:
		return NewProcess(cfg.SWIPLPath, cfg.GetTimeout(), logger), nil
	}
	return nil, fmt.Errorf("unknown engine kind %q", cfg.Kind)
}

// Close releases checker resources if it holds any.
func Close(c Checker) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
