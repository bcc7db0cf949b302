package executor

import (
	"io"

	"github.com/quetzaldb/quetzal/internal/iter"
	"github.com/quetzaldb/quetzal/internal/query"
)

// SelectExecutor drives a root iterator and streams the result relation as
// SPARQL 1.1 TSV. Column positions are preserved: every column after the
// first is preceded by exactly one tab, and an unbound column prints as
// empty, so a row NULL,NULL,"x" renders as two tabs followed by "x".
type SelectExecutor struct {
	ctx        *query.QueryContext
	root       iter.BindingIter
	projection []query.VarId
}

// NewSelectExecutor creates an executor for the given plan root and ordered
// projection. An empty projection emits a blank header and one blank line
// per row, so the row count stays observable.
func NewSelectExecutor(ctx *query.QueryContext, root iter.BindingIter, projection []query.VarId) *SelectExecutor {
	return &SelectExecutor{ctx: ctx, root: root, projection: projection}
}

// Run enumerates the plan to exhaustion, writing header and rows to w. It
// returns the number of result rows. A storage error ends the enumeration
// early; rows already written stay written.
func (e *SelectExecutor) Run(w io.Writer) (uint64, error) {
	binding := e.ctx.NewBinding()
	e.root.Begin(binding)

	printer := query.NewPrinter(e.ctx)
	ew := NewEscapeWriter(w)

	if err := e.writeHeader(w); err != nil {
		return 0, err
	}

	var count uint64
	for e.root.Next() {
		count++
		for i, v := range e.projection {
			if i > 0 {
				if _, err := io.WriteString(w, "\t"); err != nil {
					return count, err
				}
			}
			oid := binding.Get(v)
			if oid.IsNull() {
				continue
			}
			if err := printer.Print(w, ew, oid); err != nil {
				return count, err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return count, err
		}
	}
	return count, e.root.Err()
}

func (e *SelectExecutor) writeHeader(w io.Writer) error {
	for i, v := range e.projection {
		if i > 0 {
			if _, err := io.WriteString(w, "\t"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, e.ctx.VarName(v)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Analyze renders the plan tree with its runtime counters. Meaningful after
// Run, when the counters reflect a full enumeration.
func (e *SelectExecutor) Analyze(w io.Writer) {
	e.root.Analyze(w, 0)
}
