package regression

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"claimlog/internal/claims"
	"claimlog/internal/engine"
)

func compiler(t *testing.T) *claims.Compiler {
	t.Helper()
	c, err := claims.New()
	require.NoError(t, err)
	return c
}

func writeBattery(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "battery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestShippedBattery(t *testing.T) {
	b, err := LoadBattery(filepath.Join("testdata", "battery.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, b.Cases)

	results, err := RunBattery(context.Background(), b, compiler(t), Options{Checker: engine.NewReader()})
	require.NoError(t, err)
	require.Len(t, results, len(b.Cases))
	for _, r := range results {
		assert.True(t, r.Success, "%s: %s", r.CaseID, r.Error)
	}
	assert.Equal(t, len(b.Cases), Passed(results))
}

func TestLoadBattery(t *testing.T) {
	path := writeBattery(t, `version: 1
cases:
  - id: smoke
    subject: {claimType: person, id: p1}
    fact: "assert(person(p1))."
`)

	b, err := LoadBattery(path)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Version)
	require.Len(t, b.Cases, 1)
	assert.Equal(t, "smoke", b.Cases[0].ID)
	assert.Equal(t, "person", b.Cases[0].Subject["claimType"])
}

func TestLoadBattery_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bad yaml",
			content: "cases: [",
			want:    "failed to parse battery YAML",
		},
		{
			name:    "unsupported version",
			content: "version: 9\n",
			want:    "unsupported battery version 9",
		},
		{
			name: "duplicate id",
			content: `cases:
  - {id: a, fact: "x."}
  - {id: a, fact: "y."}
`,
			want: `case "a": duplicate id`,
		},
		{
			name:    "missing id",
			content: "cases:\n  - {fact: \"x.\"}\n",
			want:    "case 0: missing id",
		},
		{
			name:    "both expectations",
			content: "cases:\n  - {id: a, fact: \"x.\", error: \"boom\"}\n",
			want:    "exactly one of fact or error",
		},
		{
			name:    "no expectation",
			content: "cases:\n  - {id: a}\n",
			want:    "exactly one of fact or error",
		},
		{
			name:    "credential and subject",
			content: "cases:\n  - {id: a, fact: \"x.\", credential: {}, subject: {}}\n",
			want:    "mutually exclusive",
		},
		{
			name:    "bad view",
			content: "cases:\n  - {id: a, fact: \"x.\", view: upsert}\n",
			want:    `invalid view "upsert"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBattery(writeBattery(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := LoadBattery(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunBattery_Mismatches(t *testing.T) {
	b := &Battery{Cases: []Case{
		{ID: "wrong-fact", Subject: map[string]any{"claimType": "person", "id": "p1"}, Fact: "assert(person(p2))."},
		{ID: "wanted-error", Subject: map[string]any{"claimType": "person", "id": "p1"}, Error: "nope"},
		{ID: "wanted-fact", Subject: map[string]any{"claimType": "invalid"}, Fact: "x."},
		{ID: "wrong-error", Subject: map[string]any{"claimType": "invalid"}, Error: "nope"},
		{ID: "ok", Subject: map[string]any{"claimType": "group", "id": "g"}, Fact: "assert(group(g))."},
	}}

	results, err := RunBattery(context.Background(), b, compiler(t), Options{})
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.Equal(t, `fact mismatch: want "assert(person(p2)).", got "assert(person(p1))."`, results[0].Error)
	assert.Equal(t, `expected error "nope", got fact "assert(person(p1))."`, results[1].Error)
	assert.Equal(t, `expected fact "x.", got error "Unknown or unsupported claimType: 'invalid'."`, results[2].Error)
	assert.Equal(t, `error mismatch: want "nope", got "Unknown or unsupported claimType: 'invalid'."`, results[3].Error)
	assert.True(t, results[4].Success)
	assert.Equal(t, "assert(group(g)).", results[4].Got)
	assert.Equal(t, 1, Passed(results))
}

func TestRunBattery_CheckerVerdict(t *testing.T) {
	invalid := false
	b := &Battery{Cases: []Case{
		{ID: "expects-valid", Subject: map[string]any{"claimType": "rule_custom", "statement": "broken(X :- y"}, Fact: "assert(broken(X :- y)."},
		{ID: "expects-invalid", Subject: map[string]any{"claimType": "person", "id": "p"}, Fact: "assert(person(p)).", Valid: &invalid},
	}}

	results, err := RunBattery(context.Background(), b, compiler(t), Options{Checker: engine.NewReader()})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "syntax check: want valid=true, got false", results[0].Error)
	assert.Equal(t, "syntax check: want valid=false, got true", results[1].Error)
}

func TestRunBattery_FailFast(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := &Battery{Cases: []Case{
		{ID: "bad", Subject: map[string]any{"claimType": "invalid"}, Fact: "x."},
		{ID: "after", Subject: map[string]any{"claimType": "person", "id": "p"}, Fact: "assert(person(p))."},
	}}

	results, err := RunBattery(context.Background(), b, compiler(t), Options{FailFast: true, Logger: zap.New(core)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)

	entries := logs.FilterMessage("regression case failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bad", entries[0].ContextMap()["case"])
}

func TestRunBattery_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := &Battery{Cases: []Case{{ID: "a", Subject: map[string]any{"claimType": "person", "id": "p"}, Fact: "assert(person(p))."}}}
	results, err := RunBattery(ctx, b, compiler(t), Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestRunBatteryEmpty(t *testing.T) {
	results, err := RunBattery(context.Background(), &Battery{}, compiler(t), Options{})
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestDefaultBatteryPath(t *testing.T) {
	assert.Equal(t, filepath.Join("ws", ".claimlog", "regression", "battery.yaml"), DefaultBatteryPath("ws"))
}
