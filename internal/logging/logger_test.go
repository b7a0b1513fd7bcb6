package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"claimlog/internal/config"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := New(config.LoggingConfig{Level: "warn", Format: format}, false)
		require.NoError(t, err, format)
		assert.True(t, l.Root().Core().Enabled(zapcore.WarnLevel))
		assert.False(t, l.Root().Core().Enabled(zapcore.InfoLevel))
	}
}

func TestNew_VerboseForcesDebug(t *testing.T) {
	l, err := New(config.LoggingConfig{Level: "error", Format: "json"}, true)
	require.NoError(t, err)
	assert.True(t, l.Root().Core().Enabled(zapcore.DebugLevel))
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"}, false)
	assert.Error(t, err)
}

func TestGet_Categories(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Wrap(zap.New(core), config.LoggingConfig{Categories: map[string]bool{"watch": false}})

	for _, c := range Categories() {
		l.Get(c).Info("hello")
	}

	var names []string
	for _, e := range logs.All() {
		names = append(names, e.LoggerName)
	}
	assert.Equal(t, []string{"compiler", "engine", "batch", "regress", "cli"}, names)
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	assert.NotNil(t, l.Get(CategoryEngine))
	assert.NotNil(t, l.Root())
	l.Sync()
	Nop().Get(CategoryCLI).Info("discarded")
}
