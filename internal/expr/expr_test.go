package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/internal/query"
	"github.com/quetzaldb/quetzal/internal/store"
)

func newTestContext(t *testing.T) *query.QueryContext {
	t.Helper()
	s, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	return query.NewQueryContext([]string{"x", "y"}, s.Dictionary(), s.Catalog(), store.NewMemoryPathManager())
}

func eval(ctx *query.QueryContext, e Expr) encoding.ObjectId {
	return e.Eval(ctx, query.NewBinding(2))
}

func str(ctx *query.QueryContext, oid encoding.ObjectId) string {
	s, _ := ctx.StringValue(oid)
	return s
}

func TestSHA512Vector(t *testing.T) {
	ctx := newTestContext(t)
	got := eval(ctx, NewSHA512(NewConstant(ctx.PackSimpleString("abc"))))
	assert.Equal(t, encoding.MaskStringSimple, got.GetSubType())
	assert.Equal(t,
		"ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a"+
			"2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f",
		str(ctx, got))
}

func TestHashNullInNullOut(t *testing.T) {
	ctx := newTestContext(t)
	b := query.NewBinding(2)
	v := NewVar(0, "x")

	assert.True(t, NewSHA512(v).Eval(ctx, b).IsNull(), "unbound input")
	assert.True(t, eval(ctx, NewSHA256(NewConstant(encoding.PackInt(5)))).IsNull(), "non-string input")

	// A lang-tagged string is not a simple string.
	tagged := encoding.MaskStringLangInlined | encoding.ObjectId(encoding.InlineString("abc", encoding.StrLangInlineBytes))
	assert.True(t, eval(ctx, NewMD5(NewConstant(tagged))).IsNull())
}

func TestTZAndDateParts(t *testing.T) {
	ctx := newTestContext(t)
	dt, err := encoding.ParseDateTime("2011-01-10T14:45:13.815-05:00", encoding.MaskDTDateTime)
	require.NoError(t, err)
	c := NewConstant(dt.ObjectId())

	assert.Equal(t, "-05:00", str(ctx, eval(ctx, NewTZ(c))))
	assert.Equal(t, encoding.PackInt(2011), eval(ctx, NewYear(c)))
	assert.Equal(t, encoding.PackInt(1), eval(ctx, NewMonth(c)))
	assert.Equal(t, encoding.PackInt(10), eval(ctx, NewDay(c)))
	assert.Equal(t, encoding.PackInt(14), eval(ctx, NewHours(c)))
	assert.Equal(t, encoding.PackInt(45), eval(ctx, NewMinutes(c)))
	assert.Equal(t, encoding.PackInt(13), eval(ctx, NewSeconds(c)))

	noTZ, err := encoding.ParseDateTime("2011-01-10T14:45:13", encoding.MaskDTDateTime)
	require.NoError(t, err)
	assert.Equal(t, "", str(ctx, eval(ctx, NewTZ(NewConstant(noTZ.ObjectId())))))

	assert.True(t, eval(ctx, NewTZ(NewConstant(encoding.PackInt(1)))).IsNull(), "non-temporal input")
}

func TestNumericUnaryDispatch(t *testing.T) {
	ctx := newTestContext(t)

	assert.Equal(t, encoding.PackInt(7), eval(ctx, NewAbs(NewConstant(encoding.PackInt(-7)))))
	assert.Equal(t, encoding.PackInt(7), eval(ctx, NewAbs(NewConstant(encoding.PackInt(7)))))
	assert.Equal(t, encoding.PackFloat(1.5), eval(ctx, NewAbs(NewConstant(encoding.PackFloat(-1.5)))))

	dec := eval(ctx, NewAbs(NewConstant(encoding.PackDecimalInlined(true, 1234, 2))))
	assert.Equal(t, encoding.PackDecimalInlined(false, 1234, 2), dec)

	assert.Equal(t, encoding.PackFloat(2), eval(ctx, NewCeil(NewConstant(encoding.PackFloat(1.2)))))
	assert.Equal(t, encoding.PackFloat(1), eval(ctx, NewFloor(NewConstant(encoding.PackFloat(1.8)))))
	assert.Equal(t, encoding.PackFloat(3), eval(ctx, NewRound(NewConstant(encoding.PackFloat(2.5)))))
	assert.Equal(t, encoding.PackInt(4), eval(ctx, NewRound(NewConstant(encoding.PackInt(4)))))

	assert.True(t, eval(ctx, NewAbs(NewConstant(encoding.BoolTrue))).IsNull(), "non-numeric input")
}

func TestTypeTests(t *testing.T) {
	ctx := newTestContext(t)

	blank := encoding.MaskAnonInlined | 3
	iri := encoding.MaskIRIInlined | encoding.ObjectId(encoding.InlineString("a", encoding.IRIInlineBytes))

	assert.Equal(t, encoding.BoolTrue, eval(ctx, NewIsBlank(NewConstant(blank))))
	assert.Equal(t, encoding.BoolFalse, eval(ctx, NewIsBlank(NewConstant(iri))))
	assert.Equal(t, encoding.BoolTrue, eval(ctx, NewIsIRI(NewConstant(iri))))
	assert.Equal(t, encoding.BoolFalse, eval(ctx, NewIsIRI(NewConstant(blank))))
	assert.Equal(t, encoding.BoolTrue, eval(ctx, NewIsLiteral(NewConstant(encoding.PackInt(1)))))
	assert.Equal(t, encoding.BoolFalse, eval(ctx, NewIsLiteral(NewConstant(iri))))
	assert.Equal(t, encoding.BoolTrue, eval(ctx, NewIsNumeric(NewConstant(encoding.PackFloat(1)))))
	assert.Equal(t, encoding.BoolFalse, eval(ctx, NewIsNumeric(NewConstant(encoding.BoolTrue))))

	// Bound inputs always get an answer; only NULL propagates.
	assert.True(t, NewIsBlank(NewVar(0, "x")).Eval(ctx, query.NewBinding(2)).IsNull())
}

func TestThreeValuedLogic(t *testing.T) {
	ctx := newTestContext(t)
	b := query.NewBinding(2)

	tr := NewConstant(encoding.BoolTrue)
	fa := NewConstant(encoding.BoolFalse)
	nu := NewVar(0, "x") // unbound

	assert.Equal(t, encoding.BoolTrue, NewAnd(tr, tr).Eval(ctx, b))
	assert.Equal(t, encoding.BoolFalse, NewAnd(tr, fa).Eval(ctx, b))
	assert.Equal(t, encoding.BoolFalse, NewAnd(nu, fa).Eval(ctx, b), "false dominates NULL")
	assert.True(t, NewAnd(nu, tr).Eval(ctx, b).IsNull())

	assert.Equal(t, encoding.BoolFalse, NewOr(fa, fa).Eval(ctx, b))
	assert.Equal(t, encoding.BoolTrue, NewOr(nu, tr).Eval(ctx, b), "true dominates NULL")
	assert.True(t, NewOr(nu, fa).Eval(ctx, b).IsNull())

	assert.Equal(t, encoding.BoolFalse, NewNot(tr).Eval(ctx, b))
	assert.Equal(t, encoding.BoolTrue, NewNot(fa).Eval(ctx, b))
	assert.True(t, NewNot(nu).Eval(ctx, b).IsNull())
}

func TestBoundAndEquals(t *testing.T) {
	ctx := newTestContext(t)
	b := query.NewBinding(2)
	b.Set(0, encoding.PackInt(5))

	assert.Equal(t, encoding.BoolTrue, NewBound(NewVar(0, "x")).Eval(ctx, b))
	assert.Equal(t, encoding.BoolFalse, NewBound(NewVar(1, "y")).Eval(ctx, b))

	eq := NewEquals(NewVar(0, "x"), NewConstant(encoding.PackInt(5)))
	assert.Equal(t, encoding.BoolTrue, eq.Eval(ctx, b))
	ne := NewEquals(NewVar(0, "x"), NewConstant(encoding.PackInt(6)))
	assert.Equal(t, encoding.BoolFalse, ne.Eval(ctx, b))
	nl := NewEquals(NewVar(1, "y"), NewConstant(encoding.PackInt(5)))
	assert.True(t, nl.Eval(ctx, b).IsNull())
}

func TestStringBuiltins(t *testing.T) {
	ctx := newTestContext(t)

	s := NewConstant(ctx.PackSimpleString("héllo"))
	assert.Equal(t, encoding.PackInt(5), eval(ctx, NewStrLen(s)))
	assert.Equal(t, "HÉLLO", str(ctx, eval(ctx, NewUCase(s))))
	assert.Equal(t, "héllo", str(ctx, eval(ctx, NewLCase(NewConstant(ctx.PackSimpleString("HÉLLO"))))))

	assert.True(t, eval(ctx, NewStrLen(NewConstant(encoding.PackInt(3)))).IsNull())
}

func TestFreeVarsAndClone(t *testing.T) {
	e := NewAnd(
		NewEquals(NewVar(1, "y"), NewVar(0, "x")),
		NewBound(NewVar(1, "y")),
	)
	assert.Equal(t, []query.VarId{1, 0}, FreeVars(e))

	clone := e.Clone().(*And)
	clone.LHS.(*Equals).LHS.(*Var).ID = 3
	assert.Equal(t, query.VarId(1), e.LHS.(*Equals).LHS.(*Var).ID, "clone shares nodes with original")
}
