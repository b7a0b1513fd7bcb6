package claims

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"claimlog/internal/schema"
)

// SubjectKey is the credential property that carries the claim.
const SubjectKey = "credentialSubject"

// Compiler turns credentials into Prolog statements. It holds no mutable
// state after New returns and is safe for concurrent use.
type Compiler struct {
	validator   schema.Validator
	defaultView UpdateView
	logger      *zap.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithValidator replaces the embedded JSON schema validator.
func WithValidator(v schema.Validator) Option {
	return func(c *Compiler) { c.validator = v }
}

// WithDefaultUpdateView changes the directive used when neither the caller
// nor the claim names one. Invalid views are ignored.
func WithDefaultUpdateView(v UpdateView) Option {
	return func(c *Compiler) {
		if v.Valid() {
			c.defaultView = v
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a Compiler. Unless WithValidator is given, every embedded claim
// schema is compiled up front; a broken schema fails here, not at extract time.
func New(opts ...Option) (*Compiler, error) {
	c := &Compiler{defaultView: DefaultUpdateView, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.validator == nil {
		v, err := schema.NewJSONSchema(SchemaFS(), SchemaIDs()...)
		if err != nil {
			return nil, fmt.Errorf("load claim schemas: %w", err)
		}
		c.validator = v
	}
	return c, nil
}

// Extract compiles the claim held in credential[credentialSubject].
//
// view overrides the claim's own updateView; pass "" to defer to the claim and
// then to the compiler's default view. All failures are *Error values.
func (c *Compiler) Extract(credential any, view UpdateView) (Statement, error) {
	doc, ok := credential.(map[string]any)
	if !ok {
		return c.fail("", missingSubject())
	}
	subject, ok := doc[SubjectKey].(map[string]any)
	if !ok {
		return c.fail("", missingSubject())
	}
	return c.ExtractSubject(subject, view)
}

// ExtractSubject compiles a bare claim record.
func (c *Compiler) ExtractSubject(subject map[string]any, view UpdateView) (Statement, error) {
	if subject == nil {
		return c.fail("", missingSubject())
	}

	tag, ok := subject["claimType"].(string)
	if !ok {
		return c.fail("", missingOrInvalidType())
	}
	entry, ok := Lookup(tag)
	if !ok {
		return c.fail(ClaimType(tag), unknownType(tag))
	}
	ct := entry.Type

	// Malformed variables outrank any schema violation on the other fields.
	if ct == RelationCustom {
		if _, ok := scalarList(subject["variables"]); !ok {
			return c.fail(ct, malformedRelationCustom())
		}
	}

	if violations := c.validator.Validate(entry.SchemaID, subject); len(violations) > 0 {
		return c.fail(ct, schemaViolation(ct, violations))
	}

	base, err := resolve(ct, subject)
	if err != nil {
		return c.fail(ct, err)
	}
	if base == "" {
		return c.fail(ct, emptyFact(ct))
	}

	if ct.IsQuery() {
		return Statement{Fact: base, Type: ct}, nil
	}

	directive, err := c.resolveUpdateView(view, subject)
	if err != nil {
		return c.fail(ct, err)
	}
	return Statement{Fact: assemble(base, directive), Type: ct}, nil
}

// resolveUpdateView applies explicit > claim field > default.
func (c *Compiler) resolveUpdateView(explicit UpdateView, subject map[string]any) (UpdateView, error) {
	if explicit != "" {
		if !explicit.Valid() {
			return "", unknownUpdateView(explicit)
		}
		return explicit, nil
	}

	raw, present := subject["updateView"]
	if !present || raw == nil {
		return c.defaultView, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", unknownUpdateView(raw)
	}
	if s == "" {
		return c.defaultView, nil
	}
	if v := UpdateView(s); v.Valid() {
		return v, nil
	}
	return "", unknownUpdateView(s)
}

// assemble wraps a base statement as directive(base).
func assemble(base string, directive UpdateView) string {
	return string(directive) + "(" + base + ")."
}

func (c *Compiler) fail(ct ClaimType, err error) (Statement, error) {
	fields := []zap.Field{zap.Error(err)}
	if ct != "" {
		fields = append(fields, zap.String("claim_type", string(ct)))
	}
	if e, ok := err.(*Error); ok {
		fields = append(fields, zap.String("kind", e.Kind.Error()))
	}
	c.logger.Debug("claim rejected", fields...)
	return Statement{}, err
}

var (
	defaultOnce     sync.Once
	defaultCompiler *Compiler
	defaultErr      error
)

// ExtractStatement compiles credential with a shared default Compiler and
// returns the wire form of the outcome.
func ExtractStatement(credential any, view UpdateView) ExtractionResult {
	defaultOnce.Do(func() {
		defaultCompiler, defaultErr = New()
	})
	if defaultErr != nil {
		return ExtractionResult{Error: defaultErr.Error()}
	}
	return NewResult(defaultCompiler.Extract(credential, view))
}
