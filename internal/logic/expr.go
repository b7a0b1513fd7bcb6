// Package logic models the boolean body of a rule claim and renders it as
// Prolog goal text.
//
// A body is a finite tree of And, Or, Not and Predicate nodes. Compile walks
// the tree once and adds exactly one pair of parentheses for every And, Or
// and Not node, so the same tree always yields byte-identical text.
package logic

// Expr is a node of a logic expression tree.
type Expr interface {
	isExpr()
}

// And is a conjunction; children are joined with ", ".
type And struct {
	Children []Expr
}

// Or is a disjunction; children are joined with "; ".
type Or struct {
	Children []Expr
}

// Not is negation as failure, rendered as \+(...).
type Not struct {
	Child Expr
}

// Predicate is a goal such as parent(X, mary).
type Predicate struct {
	Name string
	Args []string
}

func (And) isExpr()       {}
func (Or) isExpr()        {}
func (Not) isExpr()       {}
func (Predicate) isExpr() {}

// Pred is shorthand for building a Predicate node.
func Pred(name string, args ...string) Predicate {
	return Predicate{Name: name, Args: args}
}

// AllOf builds an And node.
func AllOf(children ...Expr) And {
	return And{Children: children}
}

// AnyOf builds an Or node.
func AnyOf(children ...Expr) Or {
	return Or{Children: children}
}

// Negate builds a Not node.
func Negate(child Expr) Not {
	return Not{Child: child}
}
