package expr

import (
	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/internal/query"
)

// TypeTest answers a term-category question with true or false. The answer
// is total on bound terms; only an unbound input yields NULL.
type TypeTest struct {
	Name  string
	Test  func(encoding.ObjectId) bool
	Child Expr
}

func NewIsBlank(child Expr) *TypeTest {
	return &TypeTest{
		Name:  "ISBLANK",
		Test:  func(v encoding.ObjectId) bool { return v.GetGenericType() == encoding.MaskGenericAnon },
		Child: child,
	}
}

func NewIsIRI(child Expr) *TypeTest {
	return &TypeTest{
		Name:  "ISIRI",
		Test:  func(v encoding.ObjectId) bool { return v.GetGenericType() == encoding.MaskIRI },
		Child: child,
	}
}

func NewIsLiteral(child Expr) *TypeTest {
	return &TypeTest{
		Name: "ISLITERAL",
		Test: func(v encoding.ObjectId) bool {
			switch v.GetGenericType() {
			case encoding.MaskString, encoding.MaskNumeric, encoding.MaskGenericBool, encoding.MaskDT:
				return true
			}
			return false
		},
		Child: child,
	}
}

func NewIsNumeric(child Expr) *TypeTest {
	return &TypeTest{
		Name:  "ISNUMERIC",
		Test:  func(v encoding.ObjectId) bool { return v.GetGenericType() == encoding.MaskNumeric },
		Child: child,
	}
}

func (e *TypeTest) Eval(ctx *query.QueryContext, b *query.Binding) encoding.ObjectId {
	v := e.Child.Eval(ctx, b)
	if v.IsNull() {
		return encoding.NullObjectId
	}
	return encoding.PackBool(e.Test(v))
}

func (e *TypeTest) Children() []Expr { return []Expr{e.Child} }
func (e *TypeTest) Clone() Expr {
	return &TypeTest{Name: e.Name, Test: e.Test, Child: e.Child.Clone()}
}
func (e *TypeTest) String() string { return e.Name + "(" + e.Child.String() + ")" }
