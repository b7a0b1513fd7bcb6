// Package batch runs the claim compiler over many credential files, either
// once (Runner) or continuously as a directory changes (Watcher).
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"claimlog/internal/claims"
	"claimlog/internal/document"
	"claimlog/internal/engine"
)

// Extractor compiles a decoded credential. *claims.Compiler implements it.
type Extractor interface {
	Extract(credential any, view claims.UpdateView) (claims.Statement, error)
}

// Result is the outcome for one file.
type Result struct {
	Path  string           `json:"path"`
	Fact  string           `json:"fact,omitempty"`
	Type  claims.ClaimType `json:"type,omitempty"`
	Error string           `json:"error,omitempty"`
	// Valid is set only when a syntax checker ran on Fact.
	Valid *bool `json:"valid,omitempty"`
}

// OK reports whether a fact was produced.
func (r Result) OK() bool { return r.Error == "" }

// Summary counts results.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Invalid   int `json:"invalid"` // produced a fact the checker rejected
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if !r.OK() {
			s.Failed++
			continue
		}
		s.Succeeded++
		if r.Valid != nil && !*r.Valid {
			s.Invalid++
		}
	}
	return s
}

// Runner extracts facts from files concurrently.
type Runner struct {
	extractor   Extractor
	checker     engine.Checker
	view        claims.UpdateView
	concurrency int
	logger      *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithChecker runs checker on every produced fact.
func WithChecker(c engine.Checker) Option { return func(r *Runner) { r.checker = c } }

// WithUpdateView passes view to every extraction.
func WithUpdateView(v claims.UpdateView) Option { return func(r *Runner) { r.view = v } }

// WithConcurrency bounds the number of files processed at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner returns a Runner around extractor.
func NewRunner(extractor Extractor, opts ...Option) *Runner {
	r := &Runner{
		extractor:   extractor,
		concurrency: 4,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run extracts every file named by paths. Directories contribute their
// credential files (non-recursive). Results follow the expanded input order.
// Per-file failures are reported in the results; the error is non-nil only
// when paths cannot be expanded or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	files, err := Expand(paths)
	if err != nil {
		return nil, err
	}

	logger := r.logger.With(zap.String("run_id", uuid.NewString()))
	logger.Debug("batch started", zap.Int("files", len(files)), zap.Int("concurrency", r.concurrency))

	results := make([]Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.ExtractFile(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch cancelled: %w", err)
	}

	s := Summarize(results)
	logger.Info("batch complete",
		zap.Int("files", s.Total),
		zap.Int("succeeded", s.Succeeded),
		zap.Int("failed", s.Failed),
		zap.Int("invalid", s.Invalid))
	return results, nil
}

// ExtractFile decodes and compiles a single credential file.
func (r *Runner) ExtractFile(ctx context.Context, path string) Result {
	res := Result{Path: path}

	doc, err := document.ReadFile(path)
	if err != nil {
		res.Error = err.Error()
		r.logger.Debug("credential unreadable", zap.String("path", path), zap.Error(err))
		return res
	}

	stmt, err := r.extractor.Extract(doc, r.view)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Fact, res.Type = stmt.Fact, stmt.Type

	if r.checker != nil {
		valid := r.checker.CheckSyntax(ctx, stmt.Fact)
		res.Valid = &valid
	}
	return res
}

// Expand resolves paths into credential files. Directories are listed in
// name order and filtered by extension; explicit files are kept as given.
func Expand(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", path, err)
		}
		var found []string
		for _, entry := range entries {
			if entry.IsDir() || !document.IsCredentialFile(entry.Name()) {
				continue
			}
			found = append(found, filepath.Join(path, entry.Name()))
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
