package iter

import (
	"fmt"
	"io"

	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/internal/expr"
	"github.com/quetzaldb/quetzal/internal/query"
)

// Filter passes through child rows whose condition evaluates to true. A NULL
// or non-boolean condition drops the row.
type Filter struct {
	ctx   *query.QueryContext
	child BindingIter
	cond  expr.Expr

	binding *query.Binding

	passed   uint64
	examined uint64
}

func NewFilter(ctx *query.QueryContext, child BindingIter, cond expr.Expr) *Filter {
	return &Filter{ctx: ctx, child: child, cond: cond}
}

func (f *Filter) Begin(b *query.Binding) {
	f.binding = b
	f.child.Begin(b)
}

func (f *Filter) Next() bool {
	for f.child.Next() {
		if f.ctx.Interrupted() {
			return false
		}
		f.examined++
		if f.cond.Eval(f.ctx, f.binding) == encoding.BoolTrue {
			f.passed++
			return true
		}
	}
	return false
}

func (f *Filter) Reset()       { f.child.Reset() }
func (f *Filter) AssignNulls() { f.child.AssignNulls() }
func (f *Filter) Err() error   { return f.child.Err() }

func (f *Filter) Analyze(w io.Writer, indent int) {
	indentTo(w, indent)
	fmt.Fprintf(w, "Filter(%s) [%d of %d rows passed]\n", f.cond.String(), f.passed, f.examined)
	f.child.Analyze(w, indent+1)
}
