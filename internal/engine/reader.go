package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ichiban/prolog"
)

// relaxRuleNeck lets a clause appear as a plain argument, so that
// assert(h :- b) reads the way SWI-Prolog reads it. ISO parses arguments at
// priority 999 and would otherwise reject every generated rule.
const relaxRuleNeck = `op(999, xfx, (:-)).`

// readOne succeeds when user_input holds exactly one term.
const readOne = `read_term(_, []), read_term(End, []), End == end_of_file.`

var errTrailingText = errors.New("text after the first term")

// Reader checks syntax with an embedded ISO Prolog interpreter. It accepts a
// single term, optionally followed by the end token '.'.
//
// Each check runs on a fresh interpreter, so a Reader is safe for concurrent
// use and no operator or clause state leaks between statements.
type Reader struct{}

// NewReader returns a Reader. The zero value is ready to use as well.
func NewReader() *Reader { return &Reader{} }

// CheckSyntax implements Checker.
func (*Reader) CheckSyntax(_ context.Context, statement string) bool {
	return ReadTerm(statement) == nil
}

// ReadTerm reads src as one Prolog term and returns the reader's error.
func ReadTerm(src string) error {
	if strings.TrimSpace(src) == "" {
		return fmt.Errorf("empty input")
	}

	p := prolog.New(strings.NewReader(withEnd(src)), io.Discard)
	if err := solve(p, relaxRuleNeck); err != nil {
		return fmt.Errorf("failed to prepare reader: %w", err)
	}
	if err := solve(p, readOne); err != nil {
		return err
	}
	return nil
}

// solve runs goal once and reports an exception or failure as an error.
func solve(p *prolog.Interpreter, goal string) error {
	sols, err := p.Query(goal)
	if err != nil {
		return err
	}
	defer sols.Close()

	if !sols.Next() {
		if err := sols.Err(); err != nil {
			return err
		}
		return errTrailingText
	}
	return nil
}

// withEnd appends the end token when src lacks one. It goes on its own line
// so a trailing % comment cannot swallow it.
func withEnd(src string) string {
	trimmed := strings.TrimRight(src, " \t\r\n")
	if n := len(trimmed); n > 0 && trimmed[n-1] == '.' &&
		(n == 1 || !strings.ContainsRune(symbolChars, rune(trimmed[n-2]))) {
		return src
	}
	return src + "\n."
}

// symbolChars may join a '.' into a longer operator such as =.. which is
// then not an end token.
const symbolChars = `+-*/\^<>=~:.?@#&$`
