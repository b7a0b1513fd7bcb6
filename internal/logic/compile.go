package logic

import "strings"

// Compile renders an expression tree as Prolog goal text.
//
// Nil or unrecognized nodes render as the empty string, and so does any
// group or negation with such a node below it. Callers must treat an empty
// result as a failure.
func Compile(expr Expr) string {
	switch node := expr.(type) {
	case Predicate:
		return compilePredicate(node)
	case *Predicate:
		if node != nil {
			return compilePredicate(*node)
		}
	case And:
		return compileGroup(node.Children, ", ")
	case *And:
		if node != nil {
			return compileGroup(node.Children, ", ")
		}
	case Or:
		return compileGroup(node.Children, "; ")
	case *Or:
		if node != nil {
			return compileGroup(node.Children, "; ")
		}
	case Not:
		return compileNot(node.Child)
	case *Not:
		if node != nil {
			return compileNot(node.Child)
		}
	}
	return ""
}

func compilePredicate(p Predicate) string {
	if p.Name == "" {
		return ""
	}
	return p.Name + "(" + strings.Join(p.Args, ", ") + ")"
}

func compileGroup(children []Expr, sep string) string {
	if len(children) == 0 {
		return ""
	}
	parts := make([]string, len(children))
	for i, child := range children {
		parts[i] = Compile(child)
		if parts[i] == "" {
			return ""
		}
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func compileNot(child Expr) string {
	inner := Compile(child)
	if inner == "" {
		return ""
	}
	return `\+(` + inner + ")"
}
