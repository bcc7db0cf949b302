package logical

import (
	"sort"

	"github.com/quetzaldb/quetzal/internal/query"
)

// Op is a node of the logical plan. Ops own their children exclusively and
// expose the variable sets the optimizer reasons with: scope (everything the
// subtree may bind), safe (bound in every result row) and fixable (variables
// a parent may fix to a value before execution).
type Op interface {
	ScopeVars() VarSet
	SafeVars() VarSet
	FixableVars() VarSet
	Clone() Op
	Accept(v Visitor)
	String() string
}

// Visitor dispatches over the concrete op kinds.
type Visitor interface {
	VisitTriplePattern(op *TriplePattern)
	VisitBind(op *Bind)
}

// VarSet is a set of variable ids.
type VarSet map[query.VarId]bool

// NewVarSet builds a set from the given variables.
func NewVarSet(vars ...query.VarId) VarSet {
	s := make(VarSet, len(vars))
	for _, v := range vars {
		s[v] = true
	}
	return s
}

// Contains reports membership.
func (s VarSet) Contains(v query.VarId) bool {
	return s[v]
}

// Union returns a new set holding both operands' variables.
func (s VarSet) Union(other VarSet) VarSet {
	out := make(VarSet, len(s)+len(other))
	for v := range s {
		out[v] = true
	}
	for v := range other {
		out[v] = true
	}
	return out
}

// Copy returns an independent copy.
func (s VarSet) Copy() VarSet {
	out := make(VarSet, len(s))
	for v := range s {
		out[v] = true
	}
	return out
}

// Sorted returns the variables in ascending id order.
func (s VarSet) Sorted() []query.VarId {
	out := make([]query.VarId, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
