package expr

import (
	"math"

	"github.com/cockroachdb/apd/v3"

	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/internal/query"
)

// NumericUnary applies a unary numeric function, dispatching on the exact
// numeric representation and staying in that domain: ints stay ints, floats
// floats, doubles doubles, decimals decimals.
type NumericUnary struct {
	Name    string
	Int     func(int64) int64
	Float   func(float64) float64
	Decimal func(out, in *apd.Decimal) error
	Child   Expr
}

func NewAbs(child Expr) *NumericUnary {
	return &NumericUnary{
		Name:  "ABS",
		Int:   func(i int64) int64 { return absInt(i) },
		Float: math.Abs,
		Decimal: func(out, in *apd.Decimal) error {
			_, err := apd.BaseContext.Abs(out, in)
			return err
		},
		Child: child,
	}
}

func NewCeil(child Expr) *NumericUnary {
	return &NumericUnary{
		Name:  "CEIL",
		Int:   func(i int64) int64 { return i },
		Float: math.Ceil,
		Decimal: func(out, in *apd.Decimal) error {
			_, err := apd.BaseContext.Ceil(out, in)
			return err
		},
		Child: child,
	}
}

func NewFloor(child Expr) *NumericUnary {
	return &NumericUnary{
		Name:  "FLOOR",
		Int:   func(i int64) int64 { return i },
		Float: math.Floor,
		Decimal: func(out, in *apd.Decimal) error {
			_, err := apd.BaseContext.Floor(out, in)
			return err
		},
		Child: child,
	}
}

// NewRound rounds half away from zero, per SPARQL fn:round.
func NewRound(child Expr) *NumericUnary {
	roundCtx := apd.BaseContext.WithPrecision(apd.BaseContext.Precision)
	roundCtx.Rounding = apd.RoundHalfUp
	return &NumericUnary{
		Name:  "ROUND",
		Int:   func(i int64) int64 { return i },
		Float: math.Round,
		Decimal: func(out, in *apd.Decimal) error {
			_, err := roundCtx.Quantize(out, in, 0)
			return err
		},
		Child: child,
	}
}

func absInt(i int64) int64 {
	if i < 0 {
		return -i
	}
	return i
}

func (e *NumericUnary) Eval(ctx *query.QueryContext, b *query.Binding) encoding.ObjectId {
	v := e.Child.Eval(ctx, b)
	switch v.GetSubType() {
	case encoding.MaskInt:
		return ctx.PackInteger(e.Int(encoding.UnpackInt(v)))
	case encoding.MaskFloat:
		return encoding.PackFloat(float32(e.Float(float64(encoding.UnpackFloat(v)))))
	case encoding.MaskDouble:
		d, err := ctx.UnpackDouble(v)
		if err != nil {
			return encoding.NullObjectId
		}
		return ctx.PackDouble(e.Float(d))
	case encoding.MaskDecimal:
		dec, err := ctx.UnpackDecimal(v)
		if err != nil {
			return encoding.NullObjectId
		}
		out := new(apd.Decimal)
		if err := e.Decimal(out, dec); err != nil {
			return encoding.NullObjectId
		}
		return ctx.PackDecimal(out)
	default:
		return encoding.NullObjectId
	}
}

func (e *NumericUnary) Children() []Expr { return []Expr{e.Child} }
func (e *NumericUnary) Clone() Expr {
	c := *e
	c.Child = e.Child.Clone()
	return &c
}
func (e *NumericUnary) String() string { return e.Name + "(" + e.Child.String() + ")" }
