package ixdb

import (
	"errors"
	"testing"
)

var (
	codecSchema = NewSchema()
	codecTable  = AddTable(codecSchema, "Codec", []FieldDef{
		{"num", KindUint64},
		{"small", KindUint32},
		{"flag", KindBool},
		{"title", KindString},
		{"blob", KindBytes},
		{"words", KindStringList},
		{"nums", KindUint64List},
	}, nil, nil)
)

func buildCodecPayload(num uint64, small uint32, flag bool, title string, blob []byte, words []string, nums []uint64) []byte {
	return NewRecordBuilder(codecTable).
		Uint64(num).
		Uint32(small).
		Bool(flag).
		String(title).
		Bytes(blob).
		Strings(words).
		Uint64s(nums).
		finish()
}

func TestRecordRoundTrip(t *testing.T) {
	payload := buildCodecPayload(1001, 7, true, "hello", []byte{0, 1, 0xFF}, []string{"a", "", "cc"}, []uint64{9, 0, 3})
	rec := must(codecTable.bindRecord(5, payload))

	deepEqual(t, rec.ID(), uint64(5))
	deepEqual(t, rec.Uint64("num"), uint64(1001))
	deepEqual(t, rec.Uint32("small"), uint32(7))
	deepEqual(t, rec.Bool("flag"), true)
	deepEqual(t, rec.String("title"), "hello")
	deepEqual(t, rec.Bytes("blob"), []byte{0, 1, 0xFF})
	deepEqual(t, rec.Strings("words"), []string{"a", "", "cc"})
	deepEqual(t, rec.Uint64s("nums"), []uint64{9, 0, 3})
}

func TestRecordBoundaryValues(t *testing.T) {
	payload := buildCodecPayload(0, 0, false, "", nil, nil, nil)
	rec := must(codecTable.bindRecord(1, payload))

	deepEqual(t, rec.Uint64("num"), uint64(0))
	deepEqual(t, rec.Bool("flag"), false)
	deepEqual(t, rec.String("title"), "")
	deepEqual(t, len(rec.Bytes("blob")), 0)
	isempty(t, rec.Strings("words"))
	isempty(t, rec.Uint64s("nums"))
}

func TestRecordViewsAliasPayload(t *testing.T) {
	payload := buildCodecPayload(1, 2, false, "abc", []byte{9, 9}, nil, nil)
	rec := must(codecTable.bindRecord(1, payload))

	view := rec.Bytes("blob")
	deepEqual(t, view, []byte{9, 9})
	view[0] = 7 // writes through to the payload: no copy was made
	rec2 := must(codecTable.bindRecord(1, payload))
	deepEqual(t, rec2.Bytes("blob"), []byte{7, 9})
}

func TestRecordCorruption(t *testing.T) {
	payload := buildCodecPayload(1, 2, true, "abcdef", []byte{1}, []string{"x"}, []uint64{1})

	checkDataErr := func(data []byte) {
		t.Helper()
		_, err := codecTable.bindRecord(1, data)
		var de *DataError
		if !errors.As(err, &de) {
			t.Errorf("** got %v, wanted DataError", err)
		}
	}

	for cut := 1; cut < len(payload); cut++ {
		checkDataErr(payload[:len(payload)-cut])
	}
	checkDataErr(append(append([]byte(nil), payload...), 0))

	// a length prefix pointing past the end of the payload
	bad := append([]byte(nil), payload...)
	bad[13] = 0xFF // low byte of the title length prefix
	checkDataErr(bad)
}

func TestRecordBuilderEnforcesSchemaOrder(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("** expected panic")
		}
	}()
	NewRecordBuilder(codecTable).String("out of order")
}

func TestApplyOverrides(t *testing.T) {
	payload := buildCodecPayload(10, 2, false, "old", []byte{1}, []string{"x"}, nil)
	rec := must(codecTable.bindRecord(1, payload))

	out, changed := codecTable.applyOverridesInto(nil, rec, Overrides{
		"num":   uint64(11),
		"title": "new",
		"small": uint32(2), // same value, does not count as changed
	})
	deepEqual(t, changed, 2)

	rec2 := must(codecTable.bindRecord(1, out))
	deepEqual(t, rec2.Uint64("num"), uint64(11))
	deepEqual(t, rec2.Uint32("small"), uint32(2))
	deepEqual(t, rec2.String("title"), "new")
	deepEqual(t, rec2.Bytes("blob"), []byte{1})
	deepEqual(t, rec2.Strings("words"), []string{"x"})

	// no overrides reproduces the payload byte for byte
	out, changed = codecTable.applyOverridesInto(nil, rec, nil)
	deepEqual(t, changed, 0)
	deepEqual(t, out, payload)
}
