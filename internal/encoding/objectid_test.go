package encoding

import "testing"

var allTags = []ObjectId{
	MaskAnonInlined, MaskAnonTmp,
	MaskStringSimpleExtern, MaskStringSimpleInlined, MaskStringSimpleTmp,
	MaskStringXSDExtern, MaskStringXSDInlined, MaskStringXSDTmp,
	MaskStringDatatypeExtern, MaskStringDatatypeInlined, MaskStringDatatypeTmp,
	MaskStringLangExtern, MaskStringLangInlined, MaskStringLangTmp,
	MaskIRIExtern, MaskIRIInlined, MaskIRITmp,
	MaskPositiveInt, MaskNegativeInt,
	MaskFloat,
	MaskDoubleExtern, MaskDoubleTmp,
	MaskDecimalExtern, MaskDecimalInlined, MaskDecimalTmp,
	MaskBool,
	MaskDTDate, MaskDTTime, MaskDTDateTime, MaskDTDateTimeStamp,
	MaskPath,
}

func TestTagInjectivity(t *testing.T) {
	seen := make(map[ObjectId]bool)
	for _, tag := range allTags {
		if tag == MaskNull {
			t.Errorf("tag %#x collides with NULL", uint64(tag))
		}
		if seen[tag] {
			t.Errorf("duplicate tag %#x", uint64(tag))
		}
		seen[tag] = true
	}
}

func TestTagsFitTypeMask(t *testing.T) {
	for _, tag := range allTags {
		if tag&ValueMask != 0 {
			t.Errorf("tag %#x leaks into the payload", uint64(tag))
		}
		if tag&TypeMask != tag {
			t.Errorf("tag %#x exceeds the type byte", uint64(tag))
		}
	}
}

func TestSubTypeCoalescesStorage(t *testing.T) {
	cases := []struct {
		tags []ObjectId
		sub  ObjectId
	}{
		{[]ObjectId{MaskStringSimpleExtern, MaskStringSimpleInlined, MaskStringSimpleTmp}, MaskStringSimple},
		{[]ObjectId{MaskStringXSDExtern, MaskStringXSDInlined, MaskStringXSDTmp}, MaskStringXSD},
		{[]ObjectId{MaskStringDatatypeExtern, MaskStringDatatypeInlined, MaskStringDatatypeTmp}, MaskStringDatatype},
		{[]ObjectId{MaskStringLangExtern, MaskStringLangInlined, MaskStringLangTmp}, MaskStringLang},
		{[]ObjectId{MaskIRIExtern, MaskIRIInlined, MaskIRITmp}, MaskIRISubType},
		{[]ObjectId{MaskPositiveInt, MaskNegativeInt}, MaskInt},
		{[]ObjectId{MaskDoubleExtern, MaskDoubleTmp}, MaskDouble},
		{[]ObjectId{MaskDecimalExtern, MaskDecimalInlined, MaskDecimalTmp}, MaskDecimal},
	}
	for _, c := range cases {
		for _, tag := range c.tags {
			if got := tag.GetSubType(); got != c.sub {
				t.Errorf("GetSubType(%#x) = %#x, want %#x",
					uint64(tag), uint64(got), uint64(c.sub))
			}
		}
	}
}

func TestGenericTypeFamilies(t *testing.T) {
	cases := map[ObjectId]ObjectId{
		MaskAnonTmp:              MaskGenericAnon,
		MaskStringSimpleInlined:  MaskString,
		MaskStringLangExtern:     MaskString,
		MaskIRIInlined:           MaskIRI,
		MaskPositiveInt:          MaskNumeric,
		MaskFloat:                MaskNumeric,
		MaskDecimalInlined:       MaskNumeric,
		MaskBool:                 MaskGenericBool,
		MaskDTDate:               MaskDT,
		MaskDTTime:               MaskDT,
		MaskDTDateTime:           MaskDT,
		MaskDTDateTimeStamp:      MaskDT,
		MaskPath:                 MaskGenericPath,
	}
	for tag, want := range cases {
		if got := tag.GetGenericType(); got != want {
			t.Errorf("GetGenericType(%#x) = %#x, want %#x",
				uint64(tag), uint64(got), uint64(want))
		}
	}
}

func TestNull(t *testing.T) {
	if !NullObjectId.IsNull() {
		t.Error("NullObjectId must be null")
	}
	if (MaskPositiveInt | 42).IsNull() {
		t.Error("an int must not be null")
	}
}

func TestPackBool(t *testing.T) {
	if PackBool(true) != BoolTrue || PackBool(false) != BoolFalse {
		t.Error("PackBool must return the canonical encodings")
	}
	if BoolTrue.GetValue() != 1 || BoolFalse.GetValue() != 0 {
		t.Error("boolean payloads must be 1 and 0")
	}
}
