package claims

import (
	"errors"
	"fmt"

	"claimlog/internal/schema"
)

// Failure kinds. Every error returned by Compiler.Extract wraps exactly one.
var (
	ErrMissingSubject          = errors.New("missing credential subject")
	ErrMissingOrInvalidType    = errors.New("missing or invalid claim type")
	ErrUnknownType             = errors.New("unknown claim type")
	ErrSchemaViolation         = errors.New("schema violation")
	ErrMalformedRelationCustom = errors.New("malformed custom relation")
	ErrEmptyFact               = errors.New("empty fact")
	ErrUnknownUpdateView       = errors.New("unknown update view")
)

// Error is an extraction failure. Message is the user-facing text.
type Error struct {
	Kind       error
	Message    string
	Violations []schema.Violation
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

func missingSubject() error {
	return &Error{
		Kind:    ErrMissingSubject,
		Message: "Verifiable credential must contain a 'credentialSubject' object.",
	}
}

func missingOrInvalidType() error {
	return &Error{
		Kind:    ErrMissingOrInvalidType,
		Message: "Credential subject must contain a string property 'claimType'.",
	}
}

func unknownType(tag string) error {
	return &Error{
		Kind:    ErrUnknownType,
		Message: fmt.Sprintf("Unknown or unsupported claimType: '%s'.", tag),
	}
}

func schemaViolation(ct ClaimType, violations []schema.Violation) error {
	return &Error{
		Kind:       ErrSchemaViolation,
		Message:    fmt.Sprintf("Invalid '%s' claim: %s.", ct, schema.Join(violations)),
		Violations: violations,
	}
}

func malformedRelationCustom() error {
	return &Error{
		Kind:    ErrMalformedRelationCustom,
		Message: fmt.Sprintf("Invalid '%s' claim: property 'variables' must be an array of scalar values.", RelationCustom),
	}
}

func emptyFact(ct ClaimType) error {
	return &Error{
		Kind:    ErrEmptyFact,
		Message: fmt.Sprintf("Could not build a statement from '%s' claim.", ct),
	}
}

func unknownUpdateView(value any) error {
	return &Error{
		Kind:    ErrUnknownUpdateView,
		Message: fmt.Sprintf("Unknown or unsupported updateView: '%v'.", value),
	}
}
