// Package schema validates claim records against JSON schemas.
//
// The compiler depends only on the Validator interface; JSONSchema is the
// production implementation backed by github.com/santhosh-tekuri/jsonschema.
package schema

import "strings"

// Violation is one structural problem found in a record.
// Path is a JSON pointer into the record ("" for the record itself).
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	path := v.Path
	if path == "" {
		path = "claim"
	}
	return path + " " + v.Message
}

// Validator checks a record against the schema registered under schemaID.
// An empty result means the record is structurally valid. Implementations
// must be deterministic and safe for concurrent use.
type Validator interface {
	Validate(schemaID string, record any) []Violation
}

// Join renders violations as "<path or claim> <message>" separated by ", ".
func Join(violations []Violation) string {
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
