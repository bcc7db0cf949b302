package query

import (
	"sync/atomic"

	"github.com/quetzaldb/quetzal/internal/store"
)

// QueryContext carries everything one executing query reads from: the
// persistent dictionary and catalog, the per-query temp manager and path
// manager, the variable table and the interrupt flag. A context is owned by
// exactly one query; only the interrupt flag may be touched from outside.
type QueryContext struct {
	varNames []string
	varIDs   map[string]VarId

	Dict    store.StringDictionary
	Catalog store.Catalog
	Temp    store.TempManager
	Paths   store.PathManager

	interrupted atomic.Bool
}

// NewQueryContext creates a context for a query over the given variables.
func NewQueryContext(varNames []string, dict store.StringDictionary, catalog store.Catalog, paths store.PathManager) *QueryContext {
	ids := make(map[string]VarId, len(varNames))
	for i, name := range varNames {
		ids[name] = VarId(i)
	}
	return &QueryContext{
		varNames: varNames,
		varIDs:   ids,
		Dict:     dict,
		Catalog:  catalog,
		Temp:     newTempManager(),
		Paths:    paths,
	}
}

// VarSize returns the number of variables in the query.
func (c *QueryContext) VarSize() int {
	return len(c.varNames)
}

// VarName returns the name of a variable id.
func (c *QueryContext) VarName(v VarId) string {
	return c.varNames[int(v)]
}

// VarID returns the id of a named variable.
func (c *QueryContext) VarID(name string) (VarId, bool) {
	id, ok := c.varIDs[name]
	return id, ok
}

// NewBinding creates an all-NULL binding sized for this query.
func (c *QueryContext) NewBinding() *Binding {
	return NewBinding(len(c.varNames))
}

// Cancel requests that the query stop. Safe to call from another goroutine.
func (c *QueryContext) Cancel() {
	c.interrupted.Store(true)
}

// Interrupted reports whether the query was cancelled. Iterators poll this
// inside their enumeration loops.
func (c *QueryContext) Interrupted() bool {
	return c.interrupted.Load()
}
