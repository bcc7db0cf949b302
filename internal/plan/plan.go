package plan

import (
	"fmt"

	"github.com/quetzaldb/quetzal/internal/iter"
	"github.com/quetzaldb/quetzal/internal/logical"
	"github.com/quetzaldb/quetzal/internal/query"
	"github.com/quetzaldb/quetzal/internal/store"
)

// Planner turns logical ops into physical iterator trees. Joins come out
// left-deep in the order the group lists its operands; leaf order decides
// enumeration order, which stays deterministic for a given store state.
type Planner struct {
	ctx     *query.QueryContext
	triples *store.TripleStore
}

func NewPlanner(ctx *query.QueryContext, triples *store.TripleStore) *Planner {
	return &Planner{ctx: ctx, triples: triples}
}

// Compile builds the physical tree for a single logical op.
func (pl *Planner) Compile(op logical.Op) (iter.BindingIter, error) {
	switch op := op.(type) {
	case *logical.TriplePattern:
		return iter.NewIndexScan(pl.ctx, pl.triples, op.Subject, op.Predicate, op.Object), nil
	case *logical.Bind:
		child, err := pl.Compile(op.Child)
		if err != nil {
			return nil, err
		}
		return iter.NewBind(pl.ctx, child, op.Var, op.Name, op.Expr), nil
	}
	return nil, fmt.Errorf("no physical operator for %s", op)
}

// CompileGroup joins the required ops left-deep, then attaches each optional
// op as a left-outer join. Shared variables of required joins equate only
// when both sides bind them; shared safe variables of an optional op drive
// the NULL-padding join predicate.
func (pl *Planner) CompileGroup(required []logical.Op, optional []logical.Op) (iter.BindingIter, error) {
	if len(required) == 0 {
		return nil, fmt.Errorf("empty group")
	}

	acc, err := pl.Compile(required[0])
	if err != nil {
		return nil, err
	}
	accScope := required[0].ScopeVars()

	for _, op := range required[1:] {
		rhs, err := pl.Compile(op)
		if err != nil {
			return nil, err
		}
		rhsScope := op.ScopeVars()
		acc = iter.NewNestedLoopJoin(pl.ctx, acc, rhs,
			nil,
			intersect(accScope, rhsScope),
			nil,
			only(accScope, rhsScope),
			only(rhsScope, accScope))
		accScope = accScope.Union(rhsScope)
	}

	for _, op := range optional {
		shared := intersect(accScope, op.ScopeVars())
		if len(shared) == 0 {
			return nil, fmt.Errorf("optional %s shares no variable with its group", op)
		}
		safe := intersect(accScope, op.SafeVars())
		unsafe := diff(shared, safe)
		rhs, err := pl.Compile(op)
		if err != nil {
			return nil, err
		}
		rhsScope := op.ScopeVars()
		acc = iter.NewNestedLoopJoin(pl.ctx, acc, rhs,
			safe,
			unsafe,
			nil,
			only(accScope, rhsScope),
			only(rhsScope, accScope))
		accScope = accScope.Union(rhsScope)
	}
	return acc, nil
}

func intersect(a, b logical.VarSet) []query.VarId {
	var out []query.VarId
	for _, v := range a.Sorted() {
		if b.Contains(v) {
			out = append(out, v)
		}
	}
	return out
}

func only(a, b logical.VarSet) []query.VarId {
	var out []query.VarId
	for _, v := range a.Sorted() {
		if !b.Contains(v) {
			out = append(out, v)
		}
	}
	return out
}

func diff(vars []query.VarId, minus []query.VarId) []query.VarId {
	var out []query.VarId
	for _, v := range vars {
		keep := true
		for _, m := range minus {
			if v == m {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, v)
		}
	}
	return out
}
