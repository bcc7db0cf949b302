package encoding

import (
	"fmt"
	"strconv"
	"strings"
)

// Temporal values pack their calendar components and timezone directly into
// the 56-bit payload:
//
//	bits 42-55  year    (0..9999)
//	bits 38-41  month
//	bits 33-37  day
//	bits 28-32  hour
//	bits 22-27  minute
//	bits 16-21  second
//	bits  0-11  timezone (0 none, 1 Z, else offset minutes + tzBias)
//
// Four tags share the layout: xsd:date, xsd:time, xsd:dateTime and
// xsd:dateTimeStamp. Fractional seconds are not represented.

const (
	tzNone = 0
	tzZulu = 1
	tzBias = 842 // offset minutes are shifted so -14:00 encodes as 2
)

// XSD datatype IRIs for the temporal categories.
const (
	XSDDateIRI          = "http://www.w3.org/2001/XMLSchema#date"
	XSDTimeIRI          = "http://www.w3.org/2001/XMLSchema#time"
	XSDDateTimeIRI      = "http://www.w3.org/2001/XMLSchema#dateTime"
	XSDDateTimeStampIRI = "http://www.w3.org/2001/XMLSchema#dateTimeStamp"
)

// DateTime is the decoded form of a packed temporal ObjectId.
type DateTime struct {
	Kind   ObjectId // MaskDTDate, MaskDTTime, MaskDTDateTime or MaskDTDateTimeStamp
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int

	HasTZ     bool
	TZMinutes int // offset east of UTC; 0 with HasTZ means Z or +00:00
	Zulu      bool
}

// NewDateTime decodes a temporal ObjectId. The caller must have checked that
// the generic type is MaskDT.
func NewDateTime(oid ObjectId) DateTime {
	v := oid.GetValue()
	dt := DateTime{
		Kind:   oid.GetType(),
		Year:   int(v >> 42 & 0x3FFF),
		Month:  int(v >> 38 & 0xF),
		Day:    int(v >> 33 & 0x1F),
		Hour:   int(v >> 28 & 0x1F),
		Minute: int(v >> 22 & 0x3F),
		Second: int(v >> 16 & 0x3F),
	}
	switch tz := int(v & 0xFFF); tz {
	case tzNone:
	case tzZulu:
		dt.HasTZ = true
		dt.Zulu = true
	default:
		dt.HasTZ = true
		dt.TZMinutes = tz - tzBias
	}
	return dt
}

// ObjectId packs the value back into its tagged encoding.
func (dt DateTime) ObjectId() ObjectId {
	var v uint64
	v |= uint64(dt.Year) & 0x3FFF << 42
	v |= uint64(dt.Month) & 0xF << 38
	v |= uint64(dt.Day) & 0x1F << 33
	v |= uint64(dt.Hour) & 0x1F << 28
	v |= uint64(dt.Minute) & 0x3F << 22
	v |= uint64(dt.Second) & 0x3F << 16
	switch {
	case dt.Zulu:
		v |= tzZulu
	case dt.HasTZ:
		v |= uint64(dt.TZMinutes+tzBias) & 0xFFF
	}
	return dt.Kind | ObjectId(v)
}

// TZ returns the timezone designator: "Z", "+HH:MM", "-HH:MM", or "" when
// the value carries no timezone.
func (dt DateTime) TZ() string {
	if !dt.HasTZ {
		return ""
	}
	if dt.Zulu {
		return "Z"
	}
	off := dt.TZMinutes
	sign := "+"
	if off < 0 {
		sign = "-"
		off = -off
	}
	return fmt.Sprintf("%s%02d:%02d", sign, off/60, off%60)
}

// ValueString returns the canonical lexical form for the value's kind.
func (dt DateTime) ValueString() string {
	var b strings.Builder
	switch dt.Kind {
	case MaskDTDate:
		fmt.Fprintf(&b, "%04d-%02d-%02d", dt.Year, dt.Month, dt.Day)
	case MaskDTTime:
		fmt.Fprintf(&b, "%02d:%02d:%02d", dt.Hour, dt.Minute, dt.Second)
	default:
		fmt.Fprintf(&b, "%04d-%02d-%02dT%02d:%02d:%02d",
			dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
	}
	b.WriteString(dt.TZ())
	return b.String()
}

// DatatypeIRI returns the XSD datatype IRI for the value's kind.
func (dt DateTime) DatatypeIRI() string {
	switch dt.Kind {
	case MaskDTDate:
		return XSDDateIRI
	case MaskDTTime:
		return XSDTimeIRI
	case MaskDTDateTimeStamp:
		return XSDDateTimeStampIRI
	default:
		return XSDDateTimeIRI
	}
}

// ParseDateTime parses the XSD lexical form of the given temporal kind.
func ParseDateTime(lexical string, kind ObjectId) (DateTime, error) {
	dt := DateTime{Kind: kind}
	rest := lexical

	var err error
	if rest, err = dt.parseTZ(rest); err != nil {
		return dt, err
	}

	switch kind {
	case MaskDTDate:
		err = dt.parseDate(rest)
	case MaskDTTime:
		err = dt.parseTime(rest)
	case MaskDTDateTime, MaskDTDateTimeStamp:
		i := strings.IndexByte(rest, 'T')
		if i < 0 {
			return dt, fmt.Errorf("invalid dateTime %q", lexical)
		}
		if err = dt.parseDate(rest[:i]); err == nil {
			err = dt.parseTime(rest[i+1:])
		}
		if err == nil && kind == MaskDTDateTimeStamp && !dt.HasTZ {
			err = fmt.Errorf("dateTimeStamp %q requires a timezone", lexical)
		}
	default:
		err = fmt.Errorf("unknown temporal kind %#x", uint64(kind))
	}
	return dt, err
}

func (dt *DateTime) parseTZ(s string) (string, error) {
	if strings.HasSuffix(s, "Z") {
		dt.HasTZ = true
		dt.Zulu = true
		return s[:len(s)-1], nil
	}
	if len(s) < 6 {
		return s, nil
	}
	tail := s[len(s)-6:]
	if tail[0] != '+' && tail[0] != '-' {
		return s, nil
	}
	if tail[3] != ':' {
		// a trailing "-MM-DD" of a date, not an offset
		return s, nil
	}
	h, err1 := strconv.Atoi(tail[1:3])
	m, err2 := strconv.Atoi(tail[4:6])
	if err1 != nil || err2 != nil || h > 14 || m > 59 {
		return s, fmt.Errorf("invalid timezone in %q", s)
	}
	off := h*60 + m
	if tail[0] == '-' {
		off = -off
	}
	dt.HasTZ = true
	dt.TZMinutes = off
	return s[:len(s)-6], nil
}

func (dt *DateTime) parseDate(s string) error {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return fmt.Errorf("invalid date %q", s)
	}
	y, err1 := strconv.Atoi(s[0:4])
	mo, err2 := strconv.Atoi(s[5:7])
	d, err3 := strconv.Atoi(s[8:10])
	if err1 != nil || err2 != nil || err3 != nil ||
		mo < 1 || mo > 12 || d < 1 || d > 31 {
		return fmt.Errorf("invalid date %q", s)
	}
	dt.Year, dt.Month, dt.Day = y, mo, d
	return nil
}

func (dt *DateTime) parseTime(s string) error {
	// Fractional seconds do not fit the packed layout; truncate them.
	if len(s) > 8 && s[8] == '.' {
		for _, c := range s[9:] {
			if c < '0' || c > '9' {
				return fmt.Errorf("invalid time %q", s)
			}
		}
		s = s[:8]
	}
	if len(s) != 8 || s[2] != ':' || s[5] != ':' {
		return fmt.Errorf("invalid time %q", s)
	}
	h, err1 := strconv.Atoi(s[0:2])
	m, err2 := strconv.Atoi(s[3:5])
	sec, err3 := strconv.Atoi(s[6:8])
	if err1 != nil || err2 != nil || err3 != nil ||
		h > 24 || m > 59 || sec > 59 {
		return fmt.Errorf("invalid time %q", s)
	}
	dt.Hour, dt.Minute, dt.Second = h, m, sec
	return nil
}
