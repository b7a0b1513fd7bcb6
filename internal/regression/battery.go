// Package regression runs conformance batteries against the claim compiler.
// A battery is a YAML list of credentials paired with the exact statement or
// error message they must produce, so behavior changes show up as failing
// cases rather than silent output drift.
package regression

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"claimlog/internal/claims"
	"claimlog/internal/document"
	"claimlog/internal/engine"
)

// Battery is a collection of regression cases.
type Battery struct {
	Version int    `yaml:"version"`
	Cases   []Case `yaml:"cases"`
}

// Case is a single regression case. Subject is shorthand for a credential
// whose credentialSubject is Subject. Exactly one of Fact and Error is set.
type Case struct {
	ID         string         `yaml:"id"`
	Credential map[string]any `yaml:"credential,omitempty"`
	Subject    map[string]any `yaml:"subject,omitempty"`
	View       string         `yaml:"view,omitempty"`
	Fact       string         `yaml:"fact,omitempty"`
	Error      string         `yaml:"error,omitempty"`
	Valid      *bool          `yaml:"valid,omitempty"` // expected checker verdict
}

// document returns the credential the case feeds to the compiler.
func (c Case) document() (any, error) {
	var raw any = map[string]any{}
	switch {
	case c.Credential != nil:
		raw = c.Credential
	case c.Subject != nil:
		raw = map[string]any{"credentialSubject": c.Subject}
	}
	return document.Normalize(raw)
}

// Result captures execution outcome for a case.
type Result struct {
	CaseID     string `json:"case"`
	Success    bool   `json:"success"`
	Got        string `json:"got,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Extractor compiles a decoded credential. *claims.Compiler implements it.
type Extractor interface {
	Extract(credential any, view claims.UpdateView) (claims.Statement, error)
}

// LoadBattery reads a YAML battery file from disk.
func LoadBattery(path string) (*Battery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Battery
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse battery YAML: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid battery %s: %w", path, err)
	}
	return &b, nil
}

// Validate checks battery structure: supported version, unique ids and one
// expectation per case.
func (b *Battery) Validate() error {
	if b.Version != 0 && b.Version != 1 {
		return fmt.Errorf("unsupported battery version %d", b.Version)
	}
	seen := make(map[string]bool, len(b.Cases))
	var errs []error
	for i, c := range b.Cases {
		switch {
		case c.ID == "":
			errs = append(errs, fmt.Errorf("case %d: missing id", i))
		case seen[c.ID]:
			errs = append(errs, fmt.Errorf("case %q: duplicate id", c.ID))
		}
		seen[c.ID] = true

		if (c.Fact == "") == (c.Error == "") {
			errs = append(errs, fmt.Errorf("case %q: exactly one of fact or error must be set", c.ID))
		}
		if c.Credential != nil && c.Subject != nil {
			errs = append(errs, fmt.Errorf("case %q: credential and subject are mutually exclusive", c.ID))
		}
		if _, ok := claims.ParseUpdateView(c.View); !ok {
			errs = append(errs, fmt.Errorf("case %q: invalid view %q", c.ID, c.View))
		}
	}
	return errors.Join(errs...)
}

// Options tune RunBattery.
type Options struct {
	// Checker, when set, verifies every produced fact and compares against
	// Case.Valid when the case states one.
	Checker engine.Checker
	// FailFast stops at the first failing case.
	FailFast bool
	Logger   *zap.Logger
}

// RunBattery executes all cases in order. It returns early with the
// results so far when ctx is cancelled.
func RunBattery(ctx context.Context, b *Battery, ex Extractor, opts Options) ([]Result, error) {
	if b == nil || len(b.Cases) == 0 {
		return nil, nil
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]Result, 0, len(b.Cases))

	for _, c := range b.Cases {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		start := time.Now()
		res := runCase(ctx, c, ex, opts.Checker)
		res.DurationMs = time.Since(start).Milliseconds()
		results = append(results, res)

		if !res.Success {
			logger.Debug("regression case failed", zap.String("case", c.ID), zap.String("reason", res.Error))
			if opts.FailFast {
				break
			}
		}
	}

	return results, nil
}

func runCase(ctx context.Context, c Case, ex Extractor, checker engine.Checker) Result {
	res := Result{CaseID: c.ID}

	doc, err := c.document()
	if err != nil {
		res.Error = err.Error()
		return res
	}
	view, _ := claims.ParseUpdateView(c.View)

	stmt, extractErr := ex.Extract(doc, view)
	if extractErr != nil {
		res.Got = extractErr.Error()
		if c.Error == "" {
			res.Error = fmt.Sprintf("expected fact %q, got error %q", c.Fact, res.Got)
		} else if res.Got != c.Error {
			res.Error = fmt.Sprintf("error mismatch: want %q, got %q", c.Error, res.Got)
		}
		res.Success = res.Error == ""
		return res
	}

	res.Got = stmt.Fact
	switch {
	case c.Fact == "":
		res.Error = fmt.Sprintf("expected error %q, got fact %q", c.Error, stmt.Fact)
	case stmt.Fact != c.Fact:
		res.Error = fmt.Sprintf("fact mismatch: want %q, got %q", c.Fact, stmt.Fact)
	case checker != nil:
		valid := checker.CheckSyntax(ctx, stmt.Fact)
		want := true
		if c.Valid != nil {
			want = *c.Valid
		}
		if valid != want {
			res.Error = fmt.Sprintf("syntax check: want valid=%t, got %t", want, valid)
		}
	}
	res.Success = res.Error == ""
	return res
}

// Passed counts successful results.
func Passed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Success {
			n++
		}
	}
	return n
}

// DefaultBatteryPath returns the canonical battery path for a workspace.
func DefaultBatteryPath(workspace string) string {
	return filepath.Join(workspace, ".claimlog", "regression", "battery.yaml")
}
