package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var missingPropertyPattern = regexp.MustCompile(`'([^']*)'`)

// JSONSchema validates records against a fixed set of compiled schemas.
// Schemas are compiled once by NewJSONSchema and never mutated afterwards.
type JSONSchema struct {
	schemas map[string]*jsonschema.Schema
}

// NewJSONSchema compiles every schema named in ids from fsys.
// Each id is a path inside fsys, such as "person.schema.json".
func NewJSONSchema(fsys fs.FS, ids ...string) (*JSONSchema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	for _, id := range ids {
		data, err := fs.ReadFile(fsys, id)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", id, err)
		}
		if err := compiler.AddResource(id, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", id, err)
		}
	}

	schemas := make(map[string]*jsonschema.Schema, len(ids))
	for _, id := range ids {
		compiled, err := compiler.Compile(id)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", id, err)
		}
		schemas[id] = compiled
	}

	return &JSONSchema{schemas: schemas}, nil
}

// Has reports whether a schema was compiled under id.
func (j *JSONSchema) Has(id string) bool {
	_, ok := j.schemas[id]
	return ok
}

// Validate implements Validator.
func (j *JSONSchema) Validate(schemaID string, record any) []Violation {
	compiled, ok := j.schemas[schemaID]
	if !ok {
		return []Violation{{Message: fmt.Sprintf("unknown schema '%s'", schemaID)}}
	}

	err := compiled.Validate(record)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return []Violation{{Message: err.Error()}}
	}

	var violations []Violation
	collectLeaves(validationErr, &violations)
	sort.SliceStable(violations, func(a, b int) bool {
		if violations[a].Path != violations[b].Path {
			return violations[a].Path < violations[b].Path
		}
		return violations[a].Message < violations[b].Message
	})
	return violations
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]Violation) {
	if len(ve.Causes) == 0 {
		*out = append(*out, translate(ve)...)
		return
	}
	for _, cause := range ve.Causes {
		collectLeaves(cause, out)
	}
}

// translate rewrites "required" failures as one violation per missing
// property, phrased "must have required property 'name'".
func translate(ve *jsonschema.ValidationError) []Violation {
	if !strings.HasSuffix(ve.KeywordLocation, "/required") {
		return []Violation{{Path: ve.InstanceLocation, Message: ve.Message}}
	}

	matches := missingPropertyPattern.FindAllStringSubmatch(ve.Message, -1)
	if len(matches) == 0 {
		return []Violation{{Path: ve.InstanceLocation, Message: ve.Message}}
	}

	violations := make([]Violation, 0, len(matches))
	for _, m := range matches {
		violations = append(violations, Violation{
			Path:    ve.InstanceLocation,
			Message: fmt.Sprintf("must have required property '%s'", m[1]),
		})
	}
	return violations
}
