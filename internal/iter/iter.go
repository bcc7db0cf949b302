package iter

import (
	"fmt"
	"io"
	"strings"

	"github.com/quetzaldb/quetzal/internal/query"
)

// BindingIter is the pull protocol every physical operator implements. Begin
// attaches the iterator tree to a binding; Next produces the following row
// into that binding and reports whether one exists; Reset restarts the
// enumeration against the binding's current upstream values; AssignNulls
// unbinds every variable the subtree would normally bind. Analyze renders the
// operator and its runtime counters for plan inspection.
//
// Exactly one binding is threaded through a tree per enumeration, and a tree
// is driven by a single goroutine. Err reports a storage failure that ended
// the enumeration early.
type BindingIter interface {
	Begin(b *query.Binding)
	Next() bool
	Reset()
	AssignNulls()
	Analyze(w io.Writer, indent int)
	Err() error
}

func indentTo(w io.Writer, indent int) {
	io.WriteString(w, strings.Repeat("  ", indent)) //nolint:errcheck
}

// Empty is the iterator that yields nothing. A NestedLoopJoin swaps its
// active rhs to an Empty after emitting an OPTIONAL-padded row, and the match
// command and the HTTP server use it for patterns over terms the store has
// never seen.
type Empty struct {
	vars    []query.VarId
	binding *query.Binding
}

// NewEmpty creates an empty iterator that would bind the given variables.
func NewEmpty(vars []query.VarId) *Empty {
	return &Empty{vars: vars}
}

func (e *Empty) Begin(b *query.Binding) { e.binding = b }
func (e *Empty) Next() bool             { return false }
func (e *Empty) Reset()                 {}
func (e *Empty) Err() error             { return nil }

func (e *Empty) AssignNulls() {
	for _, v := range e.vars {
		e.binding.SetNull(v)
	}
}

func (e *Empty) Analyze(w io.Writer, indent int) {
	indentTo(w, indent)
	fmt.Fprintln(w, "Empty")
}
