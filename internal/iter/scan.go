package iter

import (
	"fmt"
	"io"

	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/internal/logical"
	"github.com/quetzaldb/quetzal/internal/query"
	"github.com/quetzaldb/quetzal/internal/store"
)

// IndexScan matches one triple pattern against the store. Variable positions
// already bound in the binding when the scan opens are treated as constants,
// so a parent join can fix them between resets. The scan opens lazily on the
// first Next after Begin or Reset.
type IndexScan struct {
	ctx     *query.QueryContext
	triples *store.TripleStore
	terms   [3]logical.PatternTerm
	vars    []query.VarId

	binding   *query.Binding
	scan      *store.TripleIterator
	needsOpen bool
	free      [3]bool
	err       error

	resultCount uint64
	executions  uint64
}

// NewIndexScan creates a scan for the given pattern positions.
func NewIndexScan(ctx *query.QueryContext, triples *store.TripleStore, s, p, o logical.PatternTerm) *IndexScan {
	is := &IndexScan{ctx: ctx, triples: triples, terms: [3]logical.PatternTerm{s, p, o}}
	for _, t := range is.terms {
		if t.IsVar && !containsVar(is.vars, t.Var) {
			is.vars = append(is.vars, t.Var)
		}
	}
	return is
}

func containsVar(vars []query.VarId, v query.VarId) bool {
	for _, u := range vars {
		if u == v {
			return true
		}
	}
	return false
}

func (is *IndexScan) Begin(b *query.Binding) {
	is.binding = b
	is.needsOpen = true
	is.err = nil
}

func (is *IndexScan) open() {
	is.executions++
	var pat store.Pattern
	for i, t := range is.terms {
		switch {
		case !t.IsVar:
			pat[i] = t.Value
			is.free[i] = false
		case !is.binding.Get(t.Var).IsNull():
			pat[i] = is.binding.Get(t.Var)
			is.free[i] = false
		default:
			pat[i] = encoding.NullObjectId
			is.free[i] = true
		}
	}
	is.scan, is.err = is.triples.Match(pat)
}

func (is *IndexScan) Next() bool {
	if is.err != nil {
		return false
	}
	if is.needsOpen {
		is.needsOpen = false
		is.open()
		if is.err != nil {
			return false
		}
	}
	if is.scan == nil {
		return false
	}
	for is.scan.Next() {
		if is.ctx.Interrupted() {
			return false
		}
		t := is.scan.Triple()
		if !is.assign(t) {
			continue
		}
		is.resultCount++
		return true
	}
	is.err = is.scan.Err()
	is.scan.Close() //nolint:errcheck
	is.scan = nil
	return false
}

// assign writes the free positions of the matched triple into the binding.
// A variable repeated across free positions must match itself within the
// triple; mismatching rows are skipped.
func (is *IndexScan) assign(t store.Triple) bool {
	for i, ti := range is.terms {
		if !is.free[i] {
			continue
		}
		for j := i + 1; j < 3; j++ {
			if is.free[j] && is.terms[j].Var == ti.Var && t[i] != t[j] {
				return false
			}
		}
	}
	for i, ti := range is.terms {
		if is.free[i] {
			is.binding.Set(ti.Var, t[i])
		}
	}
	return true
}

func (is *IndexScan) Reset() {
	if is.scan != nil {
		is.scan.Close() //nolint:errcheck
		is.scan = nil
	}
	// Unbind the positions the previous open assigned, so they scan freely
	// again; positions fixed from above keep the caller's values.
	for i, t := range is.terms {
		if is.free[i] {
			is.binding.SetNull(t.Var)
			is.free[i] = false
		}
	}
	is.needsOpen = true
	is.err = nil
}

func (is *IndexScan) AssignNulls() {
	for _, v := range is.vars {
		is.binding.SetNull(v)
	}
}

func (is *IndexScan) Err() error {
	return is.err
}

func (is *IndexScan) Analyze(w io.Writer, indent int) {
	indentTo(w, indent)
	io.WriteString(w, "IndexScan(") //nolint:errcheck
	for i, t := range is.terms {
		if i > 0 {
			io.WriteString(w, " ") //nolint:errcheck
		}
		if t.IsVar {
			fmt.Fprintf(w, "?%s", t.Name)
		} else {
			fmt.Fprintf(w, "%#x", uint64(t.Value))
		}
	}
	fmt.Fprintf(w, ") [%d results; %d executions]\n", is.resultCount, is.executions)
}
