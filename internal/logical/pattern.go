package logical

import (
	"strings"

	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/internal/query"
)

// PatternTerm is one position of a triple pattern: a constant term or a
// variable.
type PatternTerm struct {
	IsVar bool
	Var   query.VarId
	Name  string
	Value encoding.ObjectId
}

// VarTerm makes a variable pattern position.
func VarTerm(v query.VarId, name string) PatternTerm {
	return PatternTerm{IsVar: true, Var: v, Name: name}
}

// ConstTerm makes a constant pattern position.
func ConstTerm(oid encoding.ObjectId) PatternTerm {
	return PatternTerm{Value: oid}
}

// TriplePattern is the leaf logical op: match one subject/predicate/object
// pattern against the triple indexes.
type TriplePattern struct {
	Subject   PatternTerm
	Predicate PatternTerm
	Object    PatternTerm
}

func NewTriplePattern(s, p, o PatternTerm) *TriplePattern {
	return &TriplePattern{Subject: s, Predicate: p, Object: o}
}

func (op *TriplePattern) vars() VarSet {
	s := NewVarSet()
	for _, t := range []PatternTerm{op.Subject, op.Predicate, op.Object} {
		if t.IsVar {
			s[t.Var] = true
		}
	}
	return s
}

// ScopeVars returns the pattern's variables.
func (op *TriplePattern) ScopeVars() VarSet { return op.vars() }

// SafeVars: every variable of a matching pattern is bound.
func (op *TriplePattern) SafeVars() VarSet { return op.vars() }

// FixableVars: any pattern variable may be fixed in advance.
func (op *TriplePattern) FixableVars() VarSet { return op.vars() }

func (op *TriplePattern) Clone() Op {
	c := *op
	return &c
}

func (op *TriplePattern) Accept(v Visitor) {
	v.VisitTriplePattern(op)
}

func (op *TriplePattern) String() string {
	var sb strings.Builder
	sb.WriteString("TriplePattern(")
	for i, t := range []PatternTerm{op.Subject, op.Predicate, op.Object} {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if t.IsVar {
			sb.WriteString("?" + t.Name)
		} else {
			sb.WriteString("term")
		}
	}
	sb.WriteByte(')')
	return sb.String()
}
