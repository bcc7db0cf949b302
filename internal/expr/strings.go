package expr

import (
	"strings"
	"unicode/utf8"

	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/internal/query"
)

func simpleOrXSDString(v encoding.ObjectId) bool {
	sub := v.GetSubType()
	return sub == encoding.MaskStringSimple || sub == encoding.MaskStringXSD
}

// StrLen returns the length of a plain string literal in code points.
type StrLen struct {
	Child Expr
}

func NewStrLen(child Expr) *StrLen { return &StrLen{Child: child} }

func (e *StrLen) Eval(ctx *query.QueryContext, b *query.Binding) encoding.ObjectId {
	v := e.Child.Eval(ctx, b)
	if !simpleOrXSDString(v) {
		return encoding.NullObjectId
	}
	s, err := ctx.StringValue(v)
	if err != nil {
		return encoding.NullObjectId
	}
	return ctx.PackInteger(int64(utf8.RuneCountInString(s)))
}

func (e *StrLen) Children() []Expr { return []Expr{e.Child} }
func (e *StrLen) Clone() Expr      { return &StrLen{Child: e.Child.Clone()} }
func (e *StrLen) String() string   { return "STRLEN(" + e.Child.String() + ")" }

// CaseMap upper- or lower-cases a plain string literal.
type CaseMap struct {
	Name  string
	Map   func(string) string
	Child Expr
}

func NewUCase(child Expr) *CaseMap {
	return &CaseMap{Name: "UCASE", Map: strings.ToUpper, Child: child}
}

func NewLCase(child Expr) *CaseMap {
	return &CaseMap{Name: "LCASE", Map: strings.ToLower, Child: child}
}

func (e *CaseMap) Eval(ctx *query.QueryContext, b *query.Binding) encoding.ObjectId {
	v := e.Child.Eval(ctx, b)
	if !simpleOrXSDString(v) {
		return encoding.NullObjectId
	}
	s, err := ctx.StringValue(v)
	if err != nil {
		return encoding.NullObjectId
	}
	return ctx.PackSimpleString(e.Map(s))
}

func (e *CaseMap) Children() []Expr { return []Expr{e.Child} }
func (e *CaseMap) Clone() Expr {
	return &CaseMap{Name: e.Name, Map: e.Map, Child: e.Child.Clone()}
}
func (e *CaseMap) String() string { return e.Name + "(" + e.Child.String() + ")" }
