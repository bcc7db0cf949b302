package logical

import (
	"testing"

	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/internal/expr"
	"github.com/quetzaldb/quetzal/internal/query"
)

func samePattern(t *testing.T) *TriplePattern {
	t.Helper()
	return NewTriplePattern(
		VarTerm(0, "s"),
		ConstTerm(encoding.MaskIRIInlined|1),
		VarTerm(1, "o"),
	)
}

func wantVars(t *testing.T, got VarSet, want ...query.VarId) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("var set has %d entries, want %d", len(got), len(want))
	}
	for _, v := range want {
		if !got.Contains(v) {
			t.Errorf("var set missing ?%d", v)
		}
	}
}

func TestTriplePatternVarSets(t *testing.T) {
	p := samePattern(t)
	wantVars(t, p.ScopeVars(), 0, 1)
	wantVars(t, p.SafeVars(), 0, 1)
	wantVars(t, p.FixableVars(), 0, 1)
}

func TestBindVarSets(t *testing.T) {
	b := NewBind(samePattern(t), 2, "len", expr.NewStrLen(expr.NewVar(1, "o")))

	wantVars(t, b.ScopeVars(), 0, 1, 2)
	wantVars(t, b.SafeVars(), 0, 1)
	wantVars(t, b.FixableVars(), 0, 1)

	if got := b.ScopeVars().Sorted(); got[2] != 2 {
		t.Errorf("Sorted() = %v", got)
	}
}

func TestBindClone(t *testing.T) {
	b := NewBind(samePattern(t), 2, "len", expr.NewStrLen(expr.NewVar(1, "o")))
	c := b.Clone().(*Bind)
	c.Child.(*TriplePattern).Subject = VarTerm(9, "other")
	if b.Child.(*TriplePattern).Subject.Var != 0 {
		t.Error("clone shares its child with the original")
	}
}

type countingVisitor struct {
	binds    int
	patterns int
}

func (v *countingVisitor) VisitTriplePattern(*TriplePattern) { v.patterns++ }
func (v *countingVisitor) VisitBind(op *Bind)                { v.binds++; op.Child.Accept(v) }

func TestVisitor(t *testing.T) {
	b := NewBind(samePattern(t), 2, "len", expr.NewStrLen(expr.NewVar(1, "o")))
	v := &countingVisitor{}
	b.Accept(v)
	if v.binds != 1 || v.patterns != 1 {
		t.Errorf("visitor saw %d binds, %d patterns", v.binds, v.patterns)
	}
}
