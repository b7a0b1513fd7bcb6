package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimlog/internal/config"
)

func TestNew(t *testing.T) {
	c, err := New(config.EngineConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Reader{}, c)
	assert.NoError(t, Close(c))

	c, err = New(config.EngineConfig{Kind: config.EngineReader}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Reader{}, c)

	c, err = New(config.EngineConfig{Kind: config.EngineSWIPL, SWIPLPath: "swipl", Timeout: "2s"}, nil)
	require.NoError(t, err)
	proc, ok := c.(*Process)
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, proc.timeout)
	assert.Nil(t, proc.cmd, "process starts lazily")
	assert.NoError(t, Close(c))

	_, err = New(config.EngineConfig{Kind: "gprolog"}, nil)
	assert.Error(t, err)
}
