package iter

import (
	"fmt"
	"io"

	"github.com/quetzaldb/quetzal/internal/expr"
	"github.com/quetzaldb/quetzal/internal/query"
)

// Bind extends each child row with one computed variable. An expression
// error yields NULL, so the variable stays unbound for that row.
type Bind struct {
	ctx   *query.QueryContext
	child BindingIter
	v     query.VarId
	name  string
	e     expr.Expr

	binding *query.Binding

	resultCount uint64
}

func NewBind(ctx *query.QueryContext, child BindingIter, v query.VarId, name string, e expr.Expr) *Bind {
	return &Bind{ctx: ctx, child: child, v: v, name: name, e: e}
}

func (bd *Bind) Begin(b *query.Binding) {
	bd.binding = b
	bd.child.Begin(b)
}

func (bd *Bind) Next() bool {
	if !bd.child.Next() {
		return false
	}
	val := bd.e.Eval(bd.ctx, bd.binding)
	if val.IsNull() {
		bd.binding.SetNull(bd.v)
	} else {
		bd.binding.Set(bd.v, val)
	}
	bd.resultCount++
	return true
}

func (bd *Bind) Reset() { bd.child.Reset() }

func (bd *Bind) AssignNulls() {
	bd.child.AssignNulls()
	bd.binding.SetNull(bd.v)
}

func (bd *Bind) Err() error { return bd.child.Err() }

func (bd *Bind) Analyze(w io.Writer, indent int) {
	indentTo(w, indent)
	fmt.Fprintf(w, "Bind(?%s := %s) [%d results]\n", bd.name, bd.e.String(), bd.resultCount)
	bd.child.Analyze(w, indent+1)
}
