package expr

import (
	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/internal/query"
)

// TZ returns the timezone designator of a temporal value as a simple string:
// "Z", a signed "+HH:MM" offset, or "" when the value carries no timezone.
type TZ struct {
	Child Expr
}

func NewTZ(child Expr) *TZ { return &TZ{Child: child} }

func (e *TZ) Eval(ctx *query.QueryContext, b *query.Binding) encoding.ObjectId {
	v := e.Child.Eval(ctx, b)
	if v.GetGenericType() != encoding.MaskDT {
		return encoding.NullObjectId
	}
	return ctx.PackSimpleString(encoding.NewDateTime(v).TZ())
}

func (e *TZ) Children() []Expr { return []Expr{e.Child} }
func (e *TZ) Clone() Expr      { return &TZ{Child: e.Child.Clone()} }
func (e *TZ) String() string   { return "TZ(" + e.Child.String() + ")" }

// DatePart extracts one integer component of a temporal value.
type DatePart struct {
	Name  string
	Get   func(encoding.DateTime) int
	Child Expr
}

func newDatePart(name string, get func(encoding.DateTime) int, child Expr) *DatePart {
	return &DatePart{Name: name, Get: get, Child: child}
}

func NewYear(child Expr) *DatePart {
	return newDatePart("YEAR", func(dt encoding.DateTime) int { return dt.Year }, child)
}

func NewMonth(child Expr) *DatePart {
	return newDatePart("MONTH", func(dt encoding.DateTime) int { return dt.Month }, child)
}

func NewDay(child Expr) *DatePart {
	return newDatePart("DAY", func(dt encoding.DateTime) int { return dt.Day }, child)
}

func NewHours(child Expr) *DatePart {
	return newDatePart("HOURS", func(dt encoding.DateTime) int { return dt.Hour }, child)
}

func NewMinutes(child Expr) *DatePart {
	return newDatePart("MINUTES", func(dt encoding.DateTime) int { return dt.Minute }, child)
}

func NewSeconds(child Expr) *DatePart {
	return newDatePart("SECONDS", func(dt encoding.DateTime) int { return dt.Second }, child)
}

func (e *DatePart) Eval(ctx *query.QueryContext, b *query.Binding) encoding.ObjectId {
	v := e.Child.Eval(ctx, b)
	if v.GetGenericType() != encoding.MaskDT {
		return encoding.NullObjectId
	}
	return ctx.PackInteger(int64(e.Get(encoding.NewDateTime(v))))
}

func (e *DatePart) Children() []Expr { return []Expr{e.Child} }
func (e *DatePart) Clone() Expr {
	return &DatePart{Name: e.Name, Get: e.Get, Child: e.Child.Clone()}
}
func (e *DatePart) String() string { return e.Name + "(" + e.Child.String() + ")" }
