package claims

import (
	"encoding/json"
	"errors"
	"strconv"

	"claimlog/internal/logic"
	"claimlog/internal/schema"
)

// resolve builds the unwrapped base statement for a validated record.
// It returns "" when the record lacks the fields its template needs.
func resolve(ct ClaimType, record map[string]any) (string, error) {
	switch ct {
	case Person, Group, Entity, EntityGroup, Resource:
		return fact(ct, record, "id"), nil

	case File, Folder:
		return fact(ct, record, "resource_id"), nil

	case PersonBelongsToGroup:
		return fact(ct, record, "person_id", "group_id"), nil
	case ResourceOwnedByPerson:
		return fact(ct, record, "resource_id", "person_id"), nil
	case ResourceContainedIn:
		return fact(ct, record, "resource_id", "folder_id"), nil
	case EntityBelongsToEntityGroup:
		return fact(ct, record, "entity_id", "entity_group_id"), nil

	case ResourceSharedWithGroup:
		return sharedFact(ct, record, "group_id"), nil
	case ResourceSharedWithPerson:
		return sharedFact(ct, record, "person_id"), nil

	case PersonCustomProperty, GroupCustomProperty, EntityCustomProperty, EntityGroupCustomProperty:
		return fact(ct, record, "id", "property", "value"), nil

	case RelationCustom:
		return relationCustom(record)

	case Query:
		return query(record), nil

	case QueryCustom, RuleCustom:
		statement, _ := record["statement"].(string)
		return statement, nil

	case Rule:
		return rule(record)
	}
	return "", nil
}

// fact renders name(field1, field2, ...) from required scalar fields.
func fact(ct ClaimType, record map[string]any, fields ...string) string {
	args := make([]string, 0, len(fields))
	for _, field := range fields {
		arg, ok := scalar(record[field])
		if !ok || arg == "" {
			return ""
		}
		args = append(args, arg)
	}
	return logic.Compile(logic.Pred(string(ct), args...))
}

// sharedFact renders tag(sharer_id, resource_id, target) and drops the
// sharer when the claim does not name one.
func sharedFact(ct ClaimType, record map[string]any, target string) string {
	if sharer, ok := scalar(record["sharer_id"]); ok && sharer != "" {
		return fact(ct, record, "sharer_id", "resource_id", target)
	}
	return fact(ct, record, "resource_id", target)
}

func relationCustom(record map[string]any) (string, error) {
	variables, ok := scalarList(record["variables"])
	if !ok {
		return "", malformedRelationCustom()
	}
	name, _ := record["name"].(string)
	if name == "" {
		return "", nil
	}
	return logic.Compile(logic.Pred(name, variables...)), nil
}

// query renders predicate(args...). with its own terminator.
func query(record map[string]any) string {
	predicate, _ := record["predicate"].(string)
	if predicate == "" {
		return ""
	}
	args, ok := scalarList(record["args"])
	if !ok && record["args"] != nil {
		return ""
	}
	return logic.Compile(logic.Pred(predicate, args...)) + "."
}

// rule renders name(variables...) :- body.
func rule(record map[string]any) (string, error) {
	name, _ := record["name"].(string)
	variables, ok := scalarList(record["variables"])
	if name == "" || !ok {
		return "", nil
	}

	expr, err := logic.Decode(record["logic"])
	if err != nil {
		violation := schema.Violation{Path: "/logic", Message: err.Error()}
		var decodeErr logic.DecodeError
		if errors.As(err, &decodeErr) {
			violation = schema.Violation{Path: "/logic" + decodeErr.Path, Message: decodeErr.Message}
		}
		return "", schemaViolation(Rule, []schema.Violation{violation})
	}

	body := logic.Compile(expr)
	if body == "" {
		return "", nil
	}
	return logic.Compile(logic.Pred(name, variables...)) + " :- " + body, nil
}

// scalar formats a string, number or boolean field value as a Prolog argument.
func scalar(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	}
	return "", false
}

func scalarList(v any) ([]string, bool) {
	switch items := v.(type) {
	case []string:
		return items, true
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := scalar(item)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
