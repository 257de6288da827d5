// Package scope builds the combined query predicate for list and aggregate
// operations: the caller's requested filters ANDed with the role-derived
// visibility restriction. The result is an expression tree, not SQL; the
// repository layer compiles it for the storage engine, so the composition
// rules here stay independent of storage technology.
package scope

// Op is a comparison operator in a leaf condition.
type Op string

const (
	OpEq     Op = "="
	OpGte    Op = ">="
	OpLt     Op = "<"
	OpNeq    Op = "<>"
	OpSubstr Op = "substr"
)

// Expr is a node in a scope expression tree.
type Expr interface {
	isExpr()
}

// Cond is a single column comparison.
type Cond struct {
	Column string
	Op     Op
	Value  any
}

// In restricts a column to a set of ids. An empty set matches nothing,
// never everything.
type In struct {
	Column string
	IDs    []uint64
}

// And is a conjunction of sub-expressions.
type And struct {
	Exprs []Expr
}

// Or is a self-contained disjunction. Or groups are only ever combined with
// other expressions by AND; they are never flattened into an enclosing Or,
// which would widen visibility.
type Or struct {
	Exprs []Expr
}

func (Cond) isExpr() {}
func (In) isExpr()   {}
func (And) isExpr()  {}
func (Or) isExpr()   {}

// Conj ANDs the given expressions, skipping nils. Returns nil when nothing
// remains (an unrestricted scope) and unwraps a single survivor.
func Conj(exprs ...Expr) Expr {
	kept := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			kept = append(kept, e)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return And{Exprs: kept}
}
