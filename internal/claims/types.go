// Package claims compiles claim records carried in verifiable credentials
// into Prolog statements.
//
// A claim is the credentialSubject of a credential. Its claimType selects a
// JSON schema and a fact template; the resulting base statement is wrapped in
// an update view directive such as assert(...). unless the claim is a query.
package claims

// ClaimType identifies the shape and meaning of a claim. The string value is
// the wire tag and, for the fixed templates, the predicate name.
type ClaimType string

const (
	// Entities
	Person      ClaimType = "person"
	Group       ClaimType = "group"
	Entity      ClaimType = "entity"
	EntityGroup ClaimType = "entity_group"
	File        ClaimType = "file"
	Folder      ClaimType = "folder"
	Resource    ClaimType = "resource"

	// Relations
	PersonBelongsToGroup       ClaimType = "person_belongs_to_group"
	ResourceOwnedByPerson      ClaimType = "resource_owned_by_person"
	ResourceSharedWithGroup    ClaimType = "resource_shared_with_group"
	ResourceSharedWithPerson   ClaimType = "resource_shared_with_person"
	ResourceContainedIn        ClaimType = "resource_contained_in"
	EntityBelongsToEntityGroup ClaimType = "entity_belongs_to_entity_group"
	RelationCustom             ClaimType = "relation_custom"

	// Properties
	PersonCustomProperty      ClaimType = "person_custom_property"
	GroupCustomProperty       ClaimType = "group_custom_property"
	EntityCustomProperty      ClaimType = "entity_custom_property"
	EntityGroupCustomProperty ClaimType = "entity_group_custom_property"

	// Queries
	Query       ClaimType = "query"
	QueryCustom ClaimType = "query_custom"

	// Rules
	Rule       ClaimType = "rule"
	RuleCustom ClaimType = "rule_custom"
)

func (t ClaimType) String() string { return string(t) }

// IsQuery reports whether statements of this type are returned without a
// directive. Queries do not mutate the logic runtime.
func (t ClaimType) IsQuery() bool {
	return t == Query || t == QueryCustom
}

// UpdateView is the directive wrapped around a base statement.
type UpdateView string

const (
	Assert  UpdateView = "assert"
	Asserta UpdateView = "asserta"
	Assertz UpdateView = "assertz"
	Retract UpdateView = "retract"
)

// DefaultUpdateView applies when neither the caller nor the claim picks one.
const DefaultUpdateView = Assert

// UpdateViews lists every supported directive.
func UpdateViews() []UpdateView {
	return []UpdateView{Assert, Asserta, Assertz, Retract}
}

// Valid reports whether v is one of the supported directives.
func (v UpdateView) Valid() bool {
	switch v {
	case Assert, Asserta, Assertz, Retract:
		return true
	}
	return false
}

func (v UpdateView) String() string { return string(v) }

// ParseUpdateView converts s into an UpdateView. The empty string yields ""
// with ok=true, meaning "not specified".
func ParseUpdateView(s string) (UpdateView, bool) {
	if s == "" {
		return "", true
	}
	v := UpdateView(s)
	return v, v.Valid()
}

// Statement is a successfully compiled claim.
type Statement struct {
	Fact string    `json:"fact"`
	Type ClaimType `json:"type"`
}

// ExtractionResult is the wire form of an extraction: either Fact and Type
// or Error is set, never both.
type ExtractionResult struct {
	Fact  string    `json:"fact,omitempty"`
	Type  ClaimType `json:"type,omitempty"`
	Error string    `json:"error,omitempty"`
}

// NewResult converts the outcome of Compiler.Extract into its wire form.
func NewResult(stmt Statement, err error) ExtractionResult {
	if err != nil {
		return ExtractionResult{Error: err.Error()}
	}
	return ExtractionResult{Fact: stmt.Fact, Type: stmt.Type}
}

// OK reports whether the result holds a fact.
func (r ExtractionResult) OK() bool { return r.Error == "" }
