package plan

import (
	"strings"
	"testing"

	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/internal/executor"
	"github.com/quetzaldb/quetzal/internal/expr"
	"github.com/quetzaldb/quetzal/internal/logical"
	"github.com/quetzaldb/quetzal/internal/query"
	"github.com/quetzaldb/quetzal/internal/store"
	"github.com/quetzaldb/quetzal/pkg/rdf"
)

func fixture(t *testing.T, varNames ...string) (*query.QueryContext, *store.Store) {
	t.Helper()
	s, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() }) //nolint:errcheck

	triples := []*rdf.Triple{
		rdf.NewTriple(rdf.NewIRI("http://example.org/alice"), rdf.NewIRI("http://example.org/name"), rdf.NewLiteral("Alice")),
		rdf.NewTriple(rdf.NewIRI("http://example.org/alice"), rdf.NewIRI("http://example.org/nick"), rdf.NewLiteral("Ali")),
		rdf.NewTriple(rdf.NewIRI("http://example.org/bob"), rdf.NewIRI("http://example.org/name"), rdf.NewLiteral("Bob")),
	}
	if err := s.InsertTriples(triples); err != nil {
		t.Fatalf("InsertTriples: %v", err)
	}
	ctx := query.NewQueryContext(varNames, s.Dictionary(), s.Catalog(), store.NewMemoryPathManager())
	return ctx, s
}

func constIRI(t *testing.T, s *store.Store, v string) logical.PatternTerm {
	t.Helper()
	oid, found, err := s.EncodeTermReadOnly(rdf.NewIRI(v))
	if err != nil || !found {
		t.Fatalf("encoding <%s>: found=%v err=%v", v, found, err)
	}
	return logical.ConstTerm(oid)
}

func runTSV(t *testing.T, ctx *query.QueryContext, s *store.Store,
	required, optional []logical.Op, projection []query.VarId) string {
	t.Helper()
	root, err := NewPlanner(ctx, s.Triples()).CompileGroup(required, optional)
	if err != nil {
		t.Fatalf("CompileGroup: %v", err)
	}
	var sb strings.Builder
	if _, err := executor.NewSelectExecutor(ctx, root, projection).Run(&sb); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return sb.String()
}

func TestCompileGroupOptional(t *testing.T) {
	ctx, s := fixture(t, "person", "name", "nick")
	required := []logical.Op{
		logical.NewTriplePattern(
			logical.VarTerm(0, "person"),
			constIRI(t, s, "http://example.org/name"),
			logical.VarTerm(1, "name")),
	}
	optional := []logical.Op{
		logical.NewTriplePattern(
			logical.VarTerm(0, "person"),
			constIRI(t, s, "http://example.org/nick"),
			logical.VarTerm(2, "nick")),
	}

	out := runTSV(t, ctx, s, required, optional, []query.VarId{1, 2})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("output has %d lines, want header + 2 rows:\n%s", len(lines), out)
	}
	var aliceRow, bobRow string
	for _, line := range lines[1:] {
		switch {
		case strings.Contains(line, "Alice"):
			aliceRow = line
		case strings.Contains(line, "Bob"):
			bobRow = line
		}
	}
	if aliceRow != "\"Alice\"\t\"Ali\"" {
		t.Errorf("alice row = %q", aliceRow)
	}
	if bobRow != "\"Bob\"\t" {
		t.Errorf("bob row = %q, want empty nick column", bobRow)
	}
}

func TestCompileGroupJoin(t *testing.T) {
	ctx, s := fixture(t, "person", "name", "nick")
	required := []logical.Op{
		logical.NewTriplePattern(
			logical.VarTerm(0, "person"),
			constIRI(t, s, "http://example.org/nick"),
			logical.VarTerm(2, "nick")),
		logical.NewTriplePattern(
			logical.VarTerm(0, "person"),
			constIRI(t, s, "http://example.org/name"),
			logical.VarTerm(1, "name")),
	}

	out := runTSV(t, ctx, s, required, nil, []query.VarId{1, 2})
	if out != "name\tnick\n\"Alice\"\t\"Ali\"\n" {
		t.Errorf("output = %q", out)
	}
}

func TestCompileBind(t *testing.T) {
	ctx, s := fixture(t, "person", "name", "len")
	op := logical.NewBind(
		logical.NewTriplePattern(
			logical.VarTerm(0, "person"),
			constIRI(t, s, "http://example.org/name"),
			logical.VarTerm(1, "name")),
		2, "len", expr.NewStrLen(expr.NewVar(1, "name")))

	root, err := NewPlanner(ctx, s.Triples()).Compile(op)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	b := ctx.NewBinding()
	root.Begin(b)
	lengths := map[uint64]bool{}
	for root.Next() {
		lengths[uint64(b.Get(2))] = true
	}
	if err := root.Err(); err != nil {
		t.Fatalf("iterating: %v", err)
	}
	if !lengths[uint64(encoding.PackInt(5))] || !lengths[uint64(encoding.PackInt(3))] {
		t.Errorf("lengths = %v, want STRLEN 5 and 3", lengths)
	}
}

func TestCompileGroupRejectsDisjointOptional(t *testing.T) {
	ctx, s := fixture(t, "person", "name", "nick")
	required := []logical.Op{
		logical.NewTriplePattern(
			logical.VarTerm(0, "person"),
			constIRI(t, s, "http://example.org/name"),
			logical.VarTerm(1, "name")),
	}
	optional := []logical.Op{
		logical.NewTriplePattern(
			logical.VarTerm(2, "nick"),
			constIRI(t, s, "http://example.org/nick"),
			logical.VarTerm(2, "nick")),
	}
	if _, err := NewPlanner(ctx, s.Triples()).CompileGroup(required, optional); err == nil {
		t.Error("disjoint optional compiled without error")
	}
}
