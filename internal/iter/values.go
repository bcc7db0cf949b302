package iter

import (
	"fmt"
	"io"

	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/internal/query"
)

// Values enumerates a fixed table of rows, the physical form of an inline
// VALUES block. A NullObjectId cell leaves its variable unbound for that row.
type Values struct {
	vars []query.VarId
	rows [][]encoding.ObjectId

	binding *query.Binding
	pos     int

	resultCount uint64
	executions  uint64
}

// NewValues creates a values iterator. Every row must have one cell per
// variable.
func NewValues(vars []query.VarId, rows [][]encoding.ObjectId) *Values {
	return &Values{vars: vars, rows: rows}
}

func (v *Values) Begin(b *query.Binding) {
	v.binding = b
	v.pos = 0
	v.executions++
}

func (v *Values) Next() bool {
	if v.pos >= len(v.rows) {
		return false
	}
	row := v.rows[v.pos]
	v.pos++
	for i, vr := range v.vars {
		if row[i].IsNull() {
			v.binding.SetNull(vr)
		} else {
			v.binding.Set(vr, row[i])
		}
	}
	v.resultCount++
	return true
}

func (v *Values) Reset() {
	v.pos = 0
	v.executions++
}

func (v *Values) AssignNulls() {
	for _, vr := range v.vars {
		v.binding.SetNull(vr)
	}
}

func (v *Values) Err() error { return nil }

func (v *Values) Analyze(w io.Writer, indent int) {
	indentTo(w, indent)
	fmt.Fprintf(w, "Values(%d rows) [%d results; %d executions]\n",
		len(v.rows), v.resultCount, v.executions)
}
