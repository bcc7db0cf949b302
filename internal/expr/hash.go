package expr

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"

	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/internal/query"
)

// Hash applies a cryptographic digest to a simple string and yields the
// lowercase hex digest as a simple string. Any other input type is a type
// error and yields NULL.
type Hash struct {
	Name  string
	Sum   func([]byte) []byte
	Child Expr
}

func newHash(name string, sum func([]byte) []byte, child Expr) *Hash {
	return &Hash{Name: name, Sum: sum, Child: child}
}

func NewMD5(child Expr) *Hash {
	return newHash("MD5", func(b []byte) []byte { s := md5.Sum(b); return s[:] }, child)
}

func NewSHA1(child Expr) *Hash {
	return newHash("SHA1", func(b []byte) []byte { s := sha1.Sum(b); return s[:] }, child)
}

func NewSHA256(child Expr) *Hash {
	return newHash("SHA256", func(b []byte) []byte { s := sha256.Sum256(b); return s[:] }, child)
}

func NewSHA384(child Expr) *Hash {
	return newHash("SHA384", func(b []byte) []byte { s := sha512.Sum384(b); return s[:] }, child)
}

func NewSHA512(child Expr) *Hash {
	return newHash("SHA512", func(b []byte) []byte { s := sha512.Sum512(b); return s[:] }, child)
}

func (e *Hash) Eval(ctx *query.QueryContext, b *query.Binding) encoding.ObjectId {
	v := e.Child.Eval(ctx, b)
	if v.GetSubType() != encoding.MaskStringSimple {
		return encoding.NullObjectId
	}
	s, err := ctx.StringValue(v)
	if err != nil {
		return encoding.NullObjectId
	}
	return ctx.PackSimpleString(hex.EncodeToString(e.Sum([]byte(s))))
}

func (e *Hash) Children() []Expr { return []Expr{e.Child} }
func (e *Hash) Clone() Expr      { return &Hash{Name: e.Name, Sum: e.Sum, Child: e.Child.Clone()} }
func (e *Hash) String() string   { return e.Name + "(" + e.Child.String() + ")" }
