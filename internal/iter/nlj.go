package iter

import (
	"fmt"
	"io"

	"github.com/quetzaldb/quetzal/internal/query"
)

// NestedLoopJoin restarts its rhs once per lhs row and emits every
// compatible pairing. The variable partition decides the join's behavior:
//
//   - safeJoinVars are bound by every rhs row; they compare NULL-or-equal
//     and a non-empty set makes the join left-outer, padding rhs-only
//     variables with NULL when no rhs row matches an lhs row.
//   - unsafeJoinVars may be unbound on either side; a pairing is rejected
//     only when both sides bind the variable to different values.
//   - parentSafeVars are fixed above the join and copied into both children.
//   - lhsOnlyVars and rhsOnlyVars belong to exactly one side.
//
// Each child enumerates into its own binding so one side's rows never
// clobber the other's; Next merges the current pair into the parent binding.
type NestedLoopJoin struct {
	ctx *query.QueryContext
	lhs BindingIter
	rhs BindingIter

	safeJoinVars   []query.VarId
	unsafeJoinVars []query.VarId
	parentSafeVars []query.VarId
	lhsOnlyVars    []query.VarId
	rhsOnlyVars    []query.VarId

	leftOuter bool
	empty     *Empty
	active    BindingIter

	parentBinding *query.Binding
	lhsBinding    *query.Binding
	rhsBinding    *query.Binding

	needLHS bool
	matched bool
	err     error

	resultCount uint64
	executions  uint64
}

// NewNestedLoopJoin builds a join over the given children and variable
// partition. The partition sets must be pairwise disjoint.
func NewNestedLoopJoin(ctx *query.QueryContext, lhs, rhs BindingIter,
	safeJoin, unsafeJoin, parentSafe, lhsOnly, rhsOnly []query.VarId) *NestedLoopJoin {
	return &NestedLoopJoin{
		ctx:            ctx,
		lhs:            lhs,
		rhs:            rhs,
		safeJoinVars:   safeJoin,
		unsafeJoinVars: unsafeJoin,
		parentSafeVars: parentSafe,
		lhsOnlyVars:    lhsOnly,
		rhsOnlyVars:    rhsOnly,
		leftOuter:      len(safeJoin) > 0,
		empty:          NewEmpty(rhsOnly),
	}
}

func (j *NestedLoopJoin) Begin(b *query.Binding) {
	j.parentBinding = b
	j.lhsBinding = j.ctx.NewBinding()
	j.rhsBinding = j.ctx.NewBinding()
	j.lhsBinding.CopyVars(b, j.parentSafeVars)
	j.rhsBinding.CopyVars(b, j.parentSafeVars)
	j.lhs.Begin(j.lhsBinding)
	j.rhs.Begin(j.rhsBinding)
	j.empty.Begin(j.rhsBinding)
	j.active = j.rhs
	j.needLHS = true
	j.executions++
}

func (j *NestedLoopJoin) Next() bool {
	for {
		if j.err != nil || j.ctx.Interrupted() {
			return false
		}
		if j.needLHS {
			if !j.lhs.Next() {
				j.err = j.lhs.Err()
				return false
			}
			j.needLHS = false
			j.matched = false
			j.active = j.rhs
			j.rhsBinding.CopyVars(j.lhsBinding, j.safeJoinVars)
			j.rhsBinding.CopyVars(j.lhsBinding, j.unsafeJoinVars)
			j.rhs.Reset()
		}
		for j.active.Next() {
			if !j.compatible() {
				continue
			}
			j.matched = true
			j.merge()
			j.resultCount++
			return true
		}
		if err := j.active.Err(); err != nil {
			j.err = err
			return false
		}
		if j.leftOuter && !j.matched {
			j.mergePadded()
			j.matched = true
			j.active = j.empty
			j.resultCount++
			return true
		}
		j.needLHS = true
	}
}

// compatible rejects a pairing only when a join variable is bound on both
// sides to different values.
func (j *NestedLoopJoin) compatible() bool {
	for _, vars := range [][]query.VarId{j.safeJoinVars, j.unsafeJoinVars} {
		for _, v := range vars {
			l := j.lhsBinding.Get(v)
			r := j.rhsBinding.Get(v)
			if !l.IsNull() && !r.IsNull() && l != r {
				return false
			}
		}
	}
	return true
}

func (j *NestedLoopJoin) merge() {
	j.parentBinding.CopyVars(j.lhsBinding, j.lhsOnlyVars)
	j.parentBinding.CopyVars(j.rhsBinding, j.rhsOnlyVars)
	for _, vars := range [][]query.VarId{j.safeJoinVars, j.unsafeJoinVars} {
		for _, v := range vars {
			if l := j.lhsBinding.Get(v); !l.IsNull() {
				j.parentBinding.Set(v, l)
			} else {
				j.parentBinding.CopyVars(j.rhsBinding, []query.VarId{v})
			}
		}
	}
}

// mergePadded emits the lhs row with every rhs-only variable NULL.
func (j *NestedLoopJoin) mergePadded() {
	j.parentBinding.CopyVars(j.lhsBinding, j.lhsOnlyVars)
	j.parentBinding.CopyVars(j.lhsBinding, j.safeJoinVars)
	j.parentBinding.CopyVars(j.lhsBinding, j.unsafeJoinVars)
	for _, v := range j.rhsOnlyVars {
		j.parentBinding.SetNull(v)
	}
}

func (j *NestedLoopJoin) Reset() {
	j.lhsBinding.CopyVars(j.parentBinding, j.parentSafeVars)
	j.rhsBinding.CopyVars(j.parentBinding, j.parentSafeVars)
	j.lhs.Reset()
	j.needLHS = true
	j.err = nil
	j.executions++
}

func (j *NestedLoopJoin) AssignNulls() {
	for _, vars := range [][]query.VarId{j.lhsOnlyVars, j.rhsOnlyVars, j.safeJoinVars, j.unsafeJoinVars} {
		for _, v := range vars {
			j.parentBinding.SetNull(v)
		}
	}
}

func (j *NestedLoopJoin) Err() error {
	if j.err != nil {
		return j.err
	}
	if err := j.lhs.Err(); err != nil {
		return err
	}
	return j.rhs.Err()
}

func (j *NestedLoopJoin) Analyze(w io.Writer, indent int) {
	indentTo(w, indent)
	kind := "inner"
	if j.leftOuter {
		kind = "left outer"
	}
	fmt.Fprintf(w, "NestedLoopJoin(%s) [%d results; %d executions]\n", kind, j.resultCount, j.executions)
	j.lhs.Analyze(w, indent+1)
	j.rhs.Analyze(w, indent+1)
}
