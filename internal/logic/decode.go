package logic

import (
	"fmt"
	"strings"
)

// Node keys accepted by Decode.
const (
	KeyAnd       = "and"
	KeyOr        = "or"
	KeyNot       = "not"
	KeyPredicate = "predicate"
	KeyArgs      = "args"
)

// DecodeError reports a malformed node at a JSON-pointer style path.
type DecodeError struct {
	Path    string
	Message string
}

func (e DecodeError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Decode converts a generic JSON value into an expression tree.
//
// Each node is an object holding exactly one of "and", "or", "not" or
// "predicate" (with an optional "args" list of strings).
func Decode(raw any) (Expr, error) {
	return decodeNode(raw, "")
}

func decodeNode(raw any, path string) (Expr, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, DecodeError{Path: path, Message: "node must be an object"}
	}

	var kinds []string
	for _, key := range []string{KeyAnd, KeyOr, KeyNot, KeyPredicate} {
		if _, ok := obj[key]; ok {
			kinds = append(kinds, key)
		}
	}
	if len(kinds) != 1 {
		return nil, DecodeError{
			Path:    path,
			Message: fmt.Sprintf("node must have exactly one of and, or, not, predicate (found %s)", describeKeys(kinds)),
		}
	}

	switch kinds[0] {
	case KeyAnd:
		children, err := decodeChildren(obj[KeyAnd], path+"/"+KeyAnd)
		if err != nil {
			return nil, err
		}
		return And{Children: children}, nil
	case KeyOr:
		children, err := decodeChildren(obj[KeyOr], path+"/"+KeyOr)
		if err != nil {
			return nil, err
		}
		return Or{Children: children}, nil
	case KeyNot:
		child, err := decodeNode(obj[KeyNot], path+"/"+KeyNot)
		if err != nil {
			return nil, err
		}
		return Not{Child: child}, nil
	default:
		return decodePredicate(obj, path)
	}
}

func decodeChildren(raw any, path string) ([]Expr, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, DecodeError{Path: path, Message: "must be an array"}
	}
	if len(items) == 0 {
		return nil, DecodeError{Path: path, Message: "must not be empty"}
	}
	children := make([]Expr, 0, len(items))
	for i, item := range items {
		child, err := decodeNode(item, fmt.Sprintf("%s/%d", path, i))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func decodePredicate(obj map[string]any, path string) (Expr, error) {
	name, ok := obj[KeyPredicate].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return nil, DecodeError{Path: path + "/" + KeyPredicate, Message: "predicate name must be a non-empty string"}
	}

	var args []string
	if rawArgs, present := obj[KeyArgs]; present {
		items, ok := rawArgs.([]any)
		if !ok {
			return nil, DecodeError{Path: path + "/" + KeyArgs, Message: "must be an array"}
		}
		args = make([]string, 0, len(items))
		for i, item := range items {
			arg, ok := item.(string)
			if !ok {
				return nil, DecodeError{Path: fmt.Sprintf("%s/%s/%d", path, KeyArgs, i), Message: "argument must be a string"}
			}
			args = append(args, arg)
		}
	}
	return Predicate{Name: name, Args: args}, nil
}

func describeKeys(keys []string) string {
	if len(keys) == 0 {
		return "none"
	}
	return strings.Join(keys, ", ")
}
