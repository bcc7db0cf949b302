package store

import (
	"fmt"
	"io"

	"github.com/quetzaldb/quetzal/internal/encoding"
)

// PathStep is one hop of a materialized property path: the edge taken
// (possibly inverted) and the node it reached.
type PathStep struct {
	Edge    encoding.ObjectId
	Inverse bool
	Node    encoding.ObjectId
}

// MemoryPathManager stores materialized path results for a query run. Paths
// are stored with Register and read back by the printer.
type MemoryPathManager struct {
	starts []encoding.ObjectId
	steps  [][]PathStep
}

// NewMemoryPathManager creates an empty path manager.
func NewMemoryPathManager() *MemoryPathManager {
	return &MemoryPathManager{}
}

// Register stores a path and returns its id.
func (m *MemoryPathManager) Register(start encoding.ObjectId, steps []PathStep) uint64 {
	m.starts = append(m.starts, start)
	m.steps = append(m.steps, steps)
	return uint64(len(m.starts) - 1)
}

// Print renders the path with the caller-supplied node and edge printers.
func (m *MemoryPathManager) Print(w io.Writer, id uint64, node NodePrinter, edge EdgePrinter) error {
	if id >= uint64(len(m.starts)) {
		return fmt.Errorf("unknown path id %d", id)
	}
	if err := node(w, m.starts[id]); err != nil {
		return err
	}
	for _, step := range m.steps[id] {
		if err := edge(w, step.Edge, step.Inverse); err != nil {
			return err
		}
		if err := node(w, step.Node); err != nil {
			return err
		}
	}
	return nil
}
