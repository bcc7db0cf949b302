package expr

import (
	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/internal/query"
)

// Expr is one node of a binding-expression tree. Evaluation is pure: it reads
// the binding, never writes it, and returns NullObjectId for unbound inputs
// and SPARQL type errors alike.
type Expr interface {
	Eval(ctx *query.QueryContext, b *query.Binding) encoding.ObjectId
	Children() []Expr
	Clone() Expr
	String() string
}

// Walk visits e and every descendant in pre-order.
func Walk(e Expr, fn func(Expr)) {
	fn(e)
	for _, child := range e.Children() {
		Walk(child, fn)
	}
}

// FreeVars collects the variables an expression reads, deduplicated, in
// first-appearance order.
func FreeVars(e Expr) []query.VarId {
	seen := make(map[query.VarId]bool)
	var vars []query.VarId
	Walk(e, func(n Expr) {
		if v, ok := n.(*Var); ok && !seen[v.ID] {
			seen[v.ID] = true
			vars = append(vars, v.ID)
		}
	})
	return vars
}

func cloneAll(children []Expr) []Expr {
	out := make([]Expr, len(children))
	for i, c := range children {
		out[i] = c.Clone()
	}
	return out
}
