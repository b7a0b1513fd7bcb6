package claims

import (
	"embed"
	"io/fs"
)

//go:embed schemas/*.schema.json
var schemaFiles embed.FS

// SchemaFS exposes the embedded claim schemas, keyed by Entry.SchemaID.
func SchemaFS() fs.FS {
	sub, err := fs.Sub(schemaFiles, "schemas")
	if err != nil {
		panic(err)
	}
	return sub
}

// Entry describes one registered claim type.
type Entry struct {
	Type     ClaimType
	SchemaID string
	Fields   []string // record fields read by the fact template, in argument order
}

// Family groups claim types that share a template.
type Family string

const (
	FamilyEntity   Family = "entity"
	FamilyRelation Family = "relation"
	FamilyProperty Family = "property"
	FamilyQuery    Family = "query"
	FamilyRule     Family = "rule"
)

var entries = []Entry{
	{Type: Person, Fields: []string{"id"}},
	{Type: Group, Fields: []string{"id"}},
	{Type: Entity, Fields: []string{"id"}},
	{Type: EntityGroup, Fields: []string{"id"}},
	{Type: File, Fields: []string{"resource_id"}},
	{Type: Folder, Fields: []string{"resource_id"}},
	{Type: Resource, Fields: []string{"id"}},

	{Type: PersonBelongsToGroup, Fields: []string{"person_id", "group_id"}},
	{Type: ResourceOwnedByPerson, Fields: []string{"resource_id", "person_id"}},
	{Type: ResourceSharedWithGroup, Fields: []string{"sharer_id", "resource_id", "group_id"}},
	{Type: ResourceSharedWithPerson, Fields: []string{"sharer_id", "resource_id", "person_id"}},
	{Type: ResourceContainedIn, Fields: []string{"resource_id", "folder_id"}},
	{Type: EntityBelongsToEntityGroup, Fields: []string{"entity_id", "entity_group_id"}},
	{Type: RelationCustom, Fields: []string{"name", "variables"}},

	{Type: PersonCustomProperty, Fields: []string{"id", "property", "value"}},
	{Type: GroupCustomProperty, Fields: []string{"id", "property", "value"}},
	{Type: EntityCustomProperty, Fields: []string{"id", "property", "value"}},
	{Type: EntityGroupCustomProperty, Fields: []string{"id", "property", "value"}},

	{Type: Query, Fields: []string{"predicate", "args"}},
	{Type: QueryCustom, Fields: []string{"statement"}},

	{Type: Rule, Fields: []string{"name", "variables", "logic"}},
	{Type: RuleCustom, Fields: []string{"statement"}},
}

var registry = func() map[ClaimType]Entry {
	m := make(map[ClaimType]Entry, len(entries))
	for i := range entries {
		entries[i].SchemaID = string(entries[i].Type) + ".schema.json"
		m[entries[i].Type] = entries[i]
	}
	return m
}()

// Lookup returns the registry entry for tag. An unknown tag is reported with
// ok=false, not as an error.
func Lookup(tag string) (Entry, bool) {
	e, ok := registry[ClaimType(tag)]
	return e, ok
}

// Entries returns every registered claim type in declaration order.
func Entries() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// SchemaIDs returns the schema id of every registered claim type.
func SchemaIDs() []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.SchemaID
	}
	return ids
}

// Family reports which template family t belongs to.
func (t ClaimType) Family() Family {
	switch t {
	case Person, Group, Entity, EntityGroup, File, Folder, Resource:
		return FamilyEntity
	case PersonBelongsToGroup, ResourceOwnedByPerson, ResourceSharedWithGroup,
		ResourceSharedWithPerson, ResourceContainedIn, EntityBelongsToEntityGroup, RelationCustom:
		return FamilyRelation
	case PersonCustomProperty, GroupCustomProperty, EntityCustomProperty, EntityGroupCustomProperty:
		return FamilyProperty
	case Query, QueryCustom:
		return FamilyQuery
	case Rule, RuleCustom:
		return FamilyRule
	}
	return ""
}
