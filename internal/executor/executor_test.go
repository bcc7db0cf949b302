package executor

import (
	"errors"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/internal/expr"
	"github.com/quetzaldb/quetzal/internal/iter"
	"github.com/quetzaldb/quetzal/internal/query"
	"github.com/quetzaldb/quetzal/internal/store"
)

func newTestContext(t *testing.T, varNames ...string) *query.QueryContext {
	t.Helper()
	s, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	return query.NewQueryContext(varNames, s.Dictionary(), s.Catalog(), store.NewMemoryPathManager())
}

func run(t *testing.T, ctx *query.QueryContext, root iter.BindingIter, projection []query.VarId) (string, uint64) {
	t.Helper()
	var sb strings.Builder
	n, err := NewSelectExecutor(ctx, root, projection).Run(&sb)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return sb.String(), n
}

func TestEmptyProjection(t *testing.T) {
	ctx := newTestContext(t, "x")
	root := iter.NewValues([]query.VarId{0}, [][]encoding.ObjectId{
		{encoding.PackInt(1)},
		{encoding.PackInt(2)},
		{encoding.PackInt(3)},
	})

	out, n := run(t, ctx, root, nil)
	if n != 3 {
		t.Errorf("Run returned %d rows, want 3", n)
	}
	if out != "\n\n\n\n" {
		t.Errorf("output = %q, want four bare newlines", out)
	}
}

func TestSimpleLiteralProjection(t *testing.T) {
	ctx := newTestContext(t, "x")
	root := iter.NewValues([]query.VarId{0}, [][]encoding.ObjectId{
		{ctx.PackSimpleString("hi")},
	})

	out, n := run(t, ctx, root, []query.VarId{0})
	if n != 1 {
		t.Errorf("Run returned %d rows, want 1", n)
	}
	if out != "x\n\"hi\"\n" {
		t.Errorf("output = %q", out)
	}
}

func TestIntegerProjection(t *testing.T) {
	ctx := newTestContext(t, "n")
	root := iter.NewValues([]query.VarId{0}, [][]encoding.ObjectId{
		{encoding.PackInt(42)},
	})

	out, _ := run(t, ctx, root, []query.VarId{0})
	if out != "n\n42\n" {
		t.Errorf("output = %q", out)
	}
}

func TestSHA512Row(t *testing.T) {
	ctx := newTestContext(t, "s", "digest")
	child := iter.NewValues([]query.VarId{0}, [][]encoding.ObjectId{
		{ctx.PackSimpleString("abc")},
	})
	root := iter.NewBind(ctx, child, 1, "digest", expr.NewSHA512(expr.NewVar(0, "s")))

	out, _ := run(t, ctx, root, []query.VarId{1})
	const digest = "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a" +
		"2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"
	if out != "digest\n\""+digest+"\"\n" {
		t.Errorf("output = %q", out)
	}
}

func TestColumnPositionsPreserved(t *testing.T) {
	ctx := newTestContext(t, "a", "b", "c")
	null := encoding.NullObjectId
	x := ctx.PackSimpleString("x")
	y := ctx.PackSimpleString("y")
	root := iter.NewValues([]query.VarId{0, 1, 2}, [][]encoding.ObjectId{
		{null, null, x},
		{x, null, y},
	})

	out, _ := run(t, ctx, root, []query.VarId{0, 1, 2})
	want := "a\tb\tc\n" +
		"\t\t\"x\"\n" +
		"\"x\"\t\t\"y\"\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestLiteralBodyEscaping(t *testing.T) {
	ctx := newTestContext(t, "x")
	root := iter.NewValues([]query.VarId{0}, [][]encoding.ObjectId{
		{ctx.PackSimpleString("a\"b\\c\td\ne\rf")},
	})

	out, _ := run(t, ctx, root, []query.VarId{0})
	want := "x\n\"a\\\"b\\\\c\\td\\ne\\rf\"\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestEscapeWriterReportsConsumedLength(t *testing.T) {
	var sb strings.Builder
	ew := NewEscapeWriter(&sb)
	in := []byte("tab\there")
	n, err := ew.Write(in)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(in) {
		t.Errorf("Write consumed %d bytes, want %d", n, len(in))
	}
	if sb.String() != "tab\\there" {
		t.Errorf("escaped = %q", sb.String())
	}
}

func TestOptionalJoinGolden(t *testing.T) {
	ctx := newTestContext(t, "a", "b", "c")
	lhs := iter.NewValues([]query.VarId{0, 1}, [][]encoding.ObjectId{
		{encoding.PackInt(1), encoding.PackInt(2)},
		{encoding.PackInt(3), encoding.PackInt(4)},
	})
	rhs := iter.NewValues([]query.VarId{1, 2}, [][]encoding.ObjectId{
		{encoding.PackInt(2), encoding.PackInt(5)},
		{encoding.PackInt(9), encoding.PackInt(6)},
	})
	root := iter.NewNestedLoopJoin(ctx, lhs, rhs,
		[]query.VarId{1}, nil, nil, []query.VarId{0}, []query.VarId{2})

	out, n := run(t, ctx, root, []query.VarId{0, 1, 2})
	if n != 2 {
		t.Fatalf("Run returned %d rows, want 2", n)
	}
	g := goldie.New(t)
	g.Assert(t, "optional_join", []byte(out))
}

func TestRunReportsIteratorError(t *testing.T) {
	ctx := newTestContext(t, "x")
	root := &failingIter{}
	var sb strings.Builder
	n, err := NewSelectExecutor(ctx, root, []query.VarId{0}).Run(&sb)
	if err == nil {
		t.Fatal("Run swallowed the iterator error")
	}
	if n != 0 {
		t.Errorf("Run counted %d rows from a failing root", n)
	}
}

type failingIter struct {
	iter.Empty
}

func (f *failingIter) Err() error {
	return errors.New("index scan failed")
}
