package schema

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pairSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "left":  {"type": "string", "minLength": 1},
    "right": {"type": "string", "minLength": 1}
  },
  "required": ["left", "right"]
}`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"pair.schema.json":   {Data: []byte(pairSchema)},
		"broken.schema.json": {Data: []byte(`{"type": 12}`)},
	}
}

func TestNewJSONSchema(t *testing.T) {
	v, err := NewJSONSchema(testFS(), "pair.schema.json")
	require.NoError(t, err)
	assert.True(t, v.Has("pair.schema.json"))
	assert.False(t, v.Has("broken.schema.json"))
}

func TestNewJSONSchema_Errors(t *testing.T) {
	_, err := NewJSONSchema(testFS(), "missing.schema.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read schema missing.schema.json")

	_, err = NewJSONSchema(testFS(), "pair.schema.json", "broken.schema.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.schema.json")
}

func TestJSONSchema_Validate(t *testing.T) {
	v, err := NewJSONSchema(testFS(), "pair.schema.json")
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		assert.Empty(t, v.Validate("pair.schema.json", map[string]any{"left": "a", "right": "b"}))
	})

	t.Run("one missing property", func(t *testing.T) {
		got := v.Validate("pair.schema.json", map[string]any{"left": "a"})
		assert.Equal(t, []Violation{{Path: "", Message: "must have required property 'right'"}}, got)
	})

	t.Run("every missing property is reported", func(t *testing.T) {
		got := v.Validate("pair.schema.json", map[string]any{})
		assert.Equal(t, []Violation{
			{Message: "must have required property 'left'"},
			{Message: "must have required property 'right'"},
		}, got)
	})

	t.Run("wrong field type", func(t *testing.T) {
		got := v.Validate("pair.schema.json", map[string]any{"left": 1.0, "right": "b"})
		require.Len(t, got, 1)
		assert.Equal(t, "/left", got[0].Path)
	})

	t.Run("not an object", func(t *testing.T) {
		assert.NotEmpty(t, v.Validate("pair.schema.json", "left"))
	})

	t.Run("unknown schema", func(t *testing.T) {
		got := v.Validate("nope.schema.json", map[string]any{})
		assert.Equal(t, []Violation{{Message: "unknown schema 'nope.schema.json'"}}, got)
	})
}

func TestJSONSchema_ValidateIsDeterministic(t *testing.T) {
	v, err := NewJSONSchema(testFS(), "pair.schema.json")
	require.NoError(t, err)

	record := map[string]any{"left": 1.0, "right": ""}
	first := v.Validate("pair.schema.json", record)
	require.Len(t, first, 2)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, v.Validate("pair.schema.json", record))
	}
	assert.Equal(t, "/left", first[0].Path)
	assert.Equal(t, "/right", first[1].Path)
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "", Join(nil))
	assert.Equal(t, "claim must have required property 'id'", Join([]Violation{
		{Message: "must have required property 'id'"},
	}))
	assert.Equal(t, "/a bad, claim worse", Join([]Violation{
		{Path: "/a", Message: "bad"},
		{Message: "worse"},
	}))
}
