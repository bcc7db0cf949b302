package expr

import (
	"fmt"

	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/internal/query"
)

// Var reads a variable from the binding.
type Var struct {
	ID   query.VarId
	Name string
}

func NewVar(id query.VarId, name string) *Var {
	return &Var{ID: id, Name: name}
}

func (e *Var) Eval(ctx *query.QueryContext, b *query.Binding) encoding.ObjectId {
	return b.Get(e.ID)
}

func (e *Var) Children() []Expr { return nil }
func (e *Var) Clone() Expr      { c := *e; return &c }
func (e *Var) String() string   { return "?" + e.Name }

// Constant evaluates to a fixed value.
type Constant struct {
	Value encoding.ObjectId
}

func NewConstant(oid encoding.ObjectId) *Constant {
	return &Constant{Value: oid}
}

func (e *Constant) Eval(ctx *query.QueryContext, b *query.Binding) encoding.ObjectId {
	return e.Value
}

func (e *Constant) Children() []Expr { return nil }
func (e *Constant) Clone() Expr      { c := *e; return &c }
func (e *Constant) String() string   { return fmt.Sprintf("%#x", uint64(e.Value)) }

// Bound tests whether a variable is bound. Always true or false, never NULL.
type Bound struct {
	Var *Var
}

func NewBound(v *Var) *Bound {
	return &Bound{Var: v}
}

func (e *Bound) Eval(ctx *query.QueryContext, b *query.Binding) encoding.ObjectId {
	return encoding.PackBool(!b.Get(e.Var.ID).IsNull())
}

func (e *Bound) Children() []Expr { return []Expr{e.Var} }
func (e *Bound) Clone() Expr      { return &Bound{Var: e.Var.Clone().(*Var)} }
func (e *Bound) String() string   { return "BOUND(" + e.Var.String() + ")" }

// evalBool maps an operand to the three-valued domain: true, false, or
// NULL for unbound and non-boolean inputs.
func evalBool(ctx *query.QueryContext, b *query.Binding, e Expr) encoding.ObjectId {
	v := e.Eval(ctx, b)
	if v.GetType() != encoding.MaskBool {
		return encoding.NullObjectId
	}
	return v
}

// And implements SPARQL three-valued conjunction: false dominates NULL.
type And struct {
	LHS, RHS Expr
}

func NewAnd(lhs, rhs Expr) *And { return &And{LHS: lhs, RHS: rhs} }

func (e *And) Eval(ctx *query.QueryContext, b *query.Binding) encoding.ObjectId {
	l := evalBool(ctx, b, e.LHS)
	r := evalBool(ctx, b, e.RHS)
	if l == encoding.BoolFalse || r == encoding.BoolFalse {
		return encoding.BoolFalse
	}
	if l.IsNull() || r.IsNull() {
		return encoding.NullObjectId
	}
	return encoding.BoolTrue
}

func (e *And) Children() []Expr { return []Expr{e.LHS, e.RHS} }
func (e *And) Clone() Expr      { return &And{LHS: e.LHS.Clone(), RHS: e.RHS.Clone()} }
func (e *And) String() string   { return "(" + e.LHS.String() + " && " + e.RHS.String() + ")" }

// Or implements SPARQL three-valued disjunction: true dominates NULL.
type Or struct {
	LHS, RHS Expr
}

func NewOr(lhs, rhs Expr) *Or { return &Or{LHS: lhs, RHS: rhs} }

func (e *Or) Eval(ctx *query.QueryContext, b *query.Binding) encoding.ObjectId {
	l := evalBool(ctx, b, e.LHS)
	r := evalBool(ctx, b, e.RHS)
	if l == encoding.BoolTrue || r == encoding.BoolTrue {
		return encoding.BoolTrue
	}
	if l.IsNull() || r.IsNull() {
		return encoding.NullObjectId
	}
	return encoding.BoolFalse
}

func (e *Or) Children() []Expr { return []Expr{e.LHS, e.RHS} }
func (e *Or) Clone() Expr      { return &Or{LHS: e.LHS.Clone(), RHS: e.RHS.Clone()} }
func (e *Or) String() string   { return "(" + e.LHS.String() + " || " + e.RHS.String() + ")" }

// Not negates a boolean; NULL stays NULL.
type Not struct {
	Child Expr
}

func NewNot(child Expr) *Not { return &Not{Child: child} }

func (e *Not) Eval(ctx *query.QueryContext, b *query.Binding) encoding.ObjectId {
	v := evalBool(ctx, b, e.Child)
	switch v {
	case encoding.BoolTrue:
		return encoding.BoolFalse
	case encoding.BoolFalse:
		return encoding.BoolTrue
	}
	return encoding.NullObjectId
}

func (e *Not) Children() []Expr { return []Expr{e.Child} }
func (e *Not) Clone() Expr      { return &Not{Child: e.Child.Clone()} }
func (e *Not) String() string   { return "!" + e.Child.String() }

// Equals tests term equality: two terms are equal exactly when their encoded
// bits are equal. NULL on either side yields NULL.
type Equals struct {
	LHS, RHS Expr
}

func NewEquals(lhs, rhs Expr) *Equals { return &Equals{LHS: lhs, RHS: rhs} }

func (e *Equals) Eval(ctx *query.QueryContext, b *query.Binding) encoding.ObjectId {
	l := e.LHS.Eval(ctx, b)
	r := e.RHS.Eval(ctx, b)
	if l.IsNull() || r.IsNull() {
		return encoding.NullObjectId
	}
	return encoding.PackBool(l == r)
}

func (e *Equals) Children() []Expr { return []Expr{e.LHS, e.RHS} }
func (e *Equals) Clone() Expr      { return &Equals{LHS: e.LHS.Clone(), RHS: e.RHS.Clone()} }
func (e *Equals) String() string   { return "(" + e.LHS.String() + " = " + e.RHS.String() + ")" }
