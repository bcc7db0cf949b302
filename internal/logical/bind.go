package logical

import (
	"github.com/quetzaldb/quetzal/internal/expr"
	"github.com/quetzaldb/quetzal/internal/query"
)

// Bind extends each child row with one variable computed by an expression,
// the logical form of SPARQL's BIND clause. The bound variable joins the
// scope but is neither safe (the expression may yield NULL) nor fixable.
type Bind struct {
	Child Op
	Var   query.VarId
	Name  string
	Expr  expr.Expr
}

func NewBind(child Op, v query.VarId, name string, e expr.Expr) *Bind {
	return &Bind{Child: child, Var: v, Name: name, Expr: e}
}

// ScopeVars is the child scope plus the bound variable.
func (op *Bind) ScopeVars() VarSet {
	s := op.Child.ScopeVars().Copy()
	s[op.Var] = true
	return s
}

// SafeVars is exactly the child's safe set.
func (op *Bind) SafeVars() VarSet {
	return op.Child.SafeVars().Copy()
}

// FixableVars is exactly the child's fixable set.
func (op *Bind) FixableVars() VarSet {
	return op.Child.FixableVars().Copy()
}

func (op *Bind) Clone() Op {
	return &Bind{
		Child: op.Child.Clone(),
		Var:   op.Var,
		Name:  op.Name,
		Expr:  op.Expr.Clone(),
	}
}

func (op *Bind) Accept(v Visitor) {
	v.VisitBind(op)
}

func (op *Bind) String() string {
	return "Bind(?" + op.Name + " := " + op.Expr.String() + ", " + op.Child.String() + ")"
}
