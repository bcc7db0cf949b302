package encoding

import (
	"io"
	"strings"
)

// Short strings are inlined directly in the ObjectId payload instead of going
// through the dictionary. The first character occupies the highest of the N
// budget bytes so that the unsigned order of payloads matches lexicographic
// order of the strings, which the index scans rely on.

// CanInline reports whether s fits the inline budget of n bytes. Strings
// containing a NUL byte never inline: zero bytes mark the end of the
// inlined content.
func CanInline(s string, n int) bool {
	return len(s) <= n && !strings.ContainsRune(s, 0)
}

// InlineString packs s into the low n bytes of a payload. The caller must
// have checked CanInline.
func InlineString(s string, n int) uint64 {
	var v uint64
	for i := 0; i < len(s); i++ {
		v |= uint64(s[i]) << (8 * (n - 1 - i))
	}
	return v
}

// ExtractInline recovers an inlined string from the low n bytes of a payload.
func ExtractInline(payload uint64, n int) string {
	var b strings.Builder
	for i := n - 1; i >= 0; i-- {
		c := byte(payload >> (8 * i))
		if c == 0 {
			break
		}
		b.WriteByte(c)
	}
	return b.String()
}

// WriteInline writes an inlined string to w without materializing it.
func WriteInline(w io.Writer, payload uint64, n int) error {
	var buf [8]byte
	m := 0
	for i := n - 1; i >= 0; i-- {
		c := byte(payload >> (8 * i))
		if c == 0 {
			break
		}
		buf[m] = c
		m++
	}
	_, err := w.Write(buf[:m])
	return err
}
