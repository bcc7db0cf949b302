package query

import (
	"fmt"
	"strings"

	"github.com/quetzaldb/quetzal/internal/encoding"
)

// VarId identifies a query variable. Ids are dense, assigned 0..VarSize-1 by
// the query context.
type VarId uint32

// Binding maps every variable of a query to its current value. All slots
// start NULL; iterators mutate the binding in place while enumerating, and
// exactly one binding is threaded through an iterator tree at a time.
type Binding struct {
	values []encoding.ObjectId
}

// NewBinding creates an all-NULL binding for size variables.
func NewBinding(size int) *Binding {
	return &Binding{values: make([]encoding.ObjectId, size)}
}

// Get returns the value bound to v, NullObjectId when unbound.
func (b *Binding) Get(v VarId) encoding.ObjectId {
	return b.values[v]
}

// Set binds v to oid.
func (b *Binding) Set(v VarId, oid encoding.ObjectId) {
	b.values[v] = oid
}

// SetNull unbinds v.
func (b *Binding) SetNull(v VarId) {
	b.values[v] = encoding.NullObjectId
}

// Size returns the number of variable slots.
func (b *Binding) Size() int {
	return len(b.values)
}

// CopyVars copies the given variables from src into b, NULLs included.
func (b *Binding) CopyVars(src *Binding, vars []VarId) {
	for _, v := range vars {
		b.values[v] = src.values[v]
	}
}

// String renders the binding for debugging and analyze output.
func (b *Binding) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, v := range b.values {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "?%d=%#x", i, uint64(v))
	}
	sb.WriteByte('}')
	return sb.String()
}
