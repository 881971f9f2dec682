package ixdb

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Packed record layout, fields in schema order:
//
//	uint64           8 bytes little-endian
//	uint32           4 bytes little-endian
//	bool             1 byte
//	string, bytes    u32le length, then the bytes
//	[]string         u32le count, then per element: u32le length, bytes
//	[]uint64         u32le count, then count*8 bytes little-endian
//
// Accessors return views into the payload. When the payload comes from a
// Bolt bucket, the views alias memory-mapped pages owned by the enclosing
// transaction and become invalid when it ends.

// span locates one field: start..end is the field's full extent including
// any length or count prefix, body..end is the raw content.
type span struct {
	start, body, end uint32
}

// Record is a zero-copy view of a packed record bound to its table schema.
// The zero Record is invalid; operations return (Record, bool) or an error
// instead of handing one out.
type Record struct {
	table *Table
	id    uint64
	data  []byte
	spans []span
}

// bindRecord validates the payload against the table's field layout and
// precomputes field offsets. Any mismatch between the layout and the bytes
// is corruption.
func (tbl *Table) bindRecord(id uint64, data []byte) (Record, error) {
	d := makeByteDecoder(data)
	spans := make([]span, len(tbl.fields))
	for i, f := range tbl.fields {
		start := uint32(d.Off())
		body := start
		switch f.Kind {
		case KindUint64:
			if _, err := d.Raw(8); err != nil {
				return Record{}, err
			}
		case KindUint32:
			if _, err := d.Raw(4); err != nil {
				return Record{}, err
			}
		case KindBool:
			if _, err := d.Raw(1); err != nil {
				return Record{}, err
			}
		case KindString, KindBytes:
			n, err := d.LE32()
			if err != nil {
				return Record{}, err
			}
			body = uint32(d.Off())
			if _, err := d.Raw(int(n)); err != nil {
				return Record{}, err
			}
		case KindStringList:
			count, err := d.LE32()
			if err != nil {
				return Record{}, err
			}
			body = uint32(d.Off())
			for j := uint32(0); j < count; j++ {
				n, err := d.LE32()
				if err != nil {
					return Record{}, err
				}
				if _, err := d.Raw(int(n)); err != nil {
					return Record{}, err
				}
			}
		case KindUint64List:
			count, err := d.LE32()
			if err != nil {
				return Record{}, err
			}
			body = uint32(d.Off())
			if _, err := d.Raw(int(count) * 8); err != nil {
				return Record{}, err
			}
		default:
			panic(fmt.Errorf("%s.%s: unsupported field kind %v", tbl.name, f.Name, f.Kind))
		}
		spans[i] = span{start, body, uint32(d.Off())}
	}
	if d.Remaining() != 0 {
		return Record{}, dataErrf(data, d.Off(), nil, "%d trailing bytes after the last field", d.Remaining())
	}
	return Record{table: tbl, id: id, data: data, spans: spans}, nil
}

// mustBindRecord is for payloads read back from the store: failure to bind
// means the stored bytes are corrupt, which is fatal for the transaction.
func (tbl *Table) mustBindRecord(id uint64, data []byte) Record {
	rec, err := tbl.bindRecord(id, data)
	if err != nil {
		panic(tableErrf(tbl, nil, KeyUint64(id), err, "corrupt record"))
	}
	return rec
}

func (r Record) Table() *Table {
	return r.table
}

// ID is the primary key id. It is derived from the main bucket key, not
// stored inside the payload.
func (r Record) ID() uint64 {
	return r.id
}

// Data is the raw packed payload.
func (r Record) Data() []byte {
	return r.data
}

func (r Record) fieldAt(i int, want FieldKind) span {
	f := r.table.fields[i]
	if f.Kind != want {
		panic(fmt.Errorf("%s.%s is %v, not %v", r.table.name, f.Name, f.Kind, want))
	}
	return r.spans[i]
}

func (r Record) FieldUint64(i int) uint64 {
	sp := r.fieldAt(i, KindUint64)
	return binary.LittleEndian.Uint64(r.data[sp.body:])
}

func (r Record) FieldUint32(i int) uint32 {
	sp := r.fieldAt(i, KindUint32)
	return binary.LittleEndian.Uint32(r.data[sp.body:])
}

func (r Record) FieldBool(i int) bool {
	sp := r.fieldAt(i, KindBool)
	return r.data[sp.body] != 0
}

// FieldBytes returns the field content without copying. Valid for string
// and bytes fields.
func (r Record) FieldBytes(i int) []byte {
	f := r.table.fields[i]
	if f.Kind != KindString && f.Kind != KindBytes {
		panic(fmt.Errorf("%s.%s is %v, not string or bytes", r.table.name, f.Name, f.Kind))
	}
	sp := r.spans[i]
	return r.data[sp.body:sp.end]
}

// FieldString returns the field content as a string aliasing the payload.
func (r Record) FieldString(i int) string {
	return b2s(r.FieldBytes(i))
}

// FieldStrings returns the elements of a repeated string field. The slice
// header is fresh, the element bytes still alias the payload.
func (r Record) FieldStrings(i int) []string {
	sp := r.fieldAt(i, KindStringList)
	count := binary.LittleEndian.Uint32(r.data[sp.start:])
	if count == 0 {
		return nil
	}
	out := make([]string, 0, count)
	off := sp.body
	for j := uint32(0); j < count; j++ {
		n := binary.LittleEndian.Uint32(r.data[off:])
		off += 4
		out = append(out, b2s(r.data[off:off+n]))
		off += n
	}
	return out
}

func (r Record) FieldUint64s(i int) []uint64 {
	sp := r.fieldAt(i, KindUint64List)
	count := binary.LittleEndian.Uint32(r.data[sp.start:])
	if count == 0 {
		return nil
	}
	out := make([]uint64, 0, count)
	off := sp.body
	for j := uint32(0); j < count; j++ {
		out = append(out, binary.LittleEndian.Uint64(r.data[off:]))
		off += 8
	}
	return out
}

func (r Record) Uint64(name string) uint64    { return r.FieldUint64(r.table.FieldNamed(name)) }
func (r Record) Uint32(name string) uint32    { return r.FieldUint32(r.table.FieldNamed(name)) }
func (r Record) Bool(name string) bool        { return r.FieldBool(r.table.FieldNamed(name)) }
func (r Record) String(name string) string    { return r.FieldString(r.table.FieldNamed(name)) }
func (r Record) Bytes(name string) []byte     { return r.FieldBytes(r.table.FieldNamed(name)) }
func (r Record) Strings(name string) []string { return r.FieldStrings(r.table.FieldNamed(name)) }
func (r Record) Uint64s(name string) []uint64 { return r.FieldUint64s(r.table.FieldNamed(name)) }

// RecordBuilder packs field values in schema order. Appends are checked
// against the table layout; Insert consumes the builder via finish, which
// requires every field to have been set.
type RecordBuilder struct {
	table *Table
	buf   []byte
	pos   int
}

func NewRecordBuilder(tbl *Table) *RecordBuilder {
	return &RecordBuilder{table: tbl}
}

func (b *RecordBuilder) next(want FieldKind) {
	if b.pos >= len(b.table.fields) {
		panic(fmt.Errorf("%s: all %d fields already set", b.table.name, len(b.table.fields)))
	}
	f := b.table.fields[b.pos]
	if f.Kind != want {
		panic(fmt.Errorf("%s.%s is %v, not %v", b.table.name, f.Name, f.Kind, want))
	}
	b.pos++
}

func (b *RecordBuilder) Uint64(v uint64) *RecordBuilder {
	b.next(KindUint64)
	b.buf = appendLE64(b.buf, v)
	return b
}

func (b *RecordBuilder) Uint32(v uint32) *RecordBuilder {
	b.next(KindUint32)
	b.buf = appendLE32(b.buf, v)
	return b
}

func (b *RecordBuilder) Bool(v bool) *RecordBuilder {
	b.next(KindBool)
	if v {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
	return b
}

func (b *RecordBuilder) String(v string) *RecordBuilder {
	b.next(KindString)
	b.buf = appendLE32(b.buf, uint32(len(v)))
	b.buf = AppendKeyString(b.buf, v)
	return b
}

func (b *RecordBuilder) Bytes(v []byte) *RecordBuilder {
	b.next(KindBytes)
	b.buf = appendLE32(b.buf, uint32(len(v)))
	b.buf = appendRaw(b.buf, v)
	return b
}

func (b *RecordBuilder) Strings(v []string) *RecordBuilder {
	b.next(KindStringList)
	b.buf = appendStringList(b.buf, v)
	return b
}

func (b *RecordBuilder) Uint64s(v []uint64) *RecordBuilder {
	b.next(KindUint64List)
	b.buf = appendUint64List(b.buf, v)
	return b
}

func (b *RecordBuilder) finish() []byte {
	if b.pos != len(b.table.fields) {
		f := b.table.fields[b.pos]
		panic(fmt.Errorf("%s: field %s not set", b.table.name, f.Name))
	}
	return b.buf
}

func appendStringList(buf []byte, v []string) []byte {
	buf = appendLE32(buf, uint32(len(v)))
	for _, s := range v {
		buf = appendLE32(buf, uint32(len(s)))
		buf = AppendKeyString(buf, s)
	}
	return buf
}

func appendUint64List(buf []byte, v []uint64) []byte {
	buf = appendLE32(buf, uint32(len(v)))
	for _, e := range v {
		buf = appendLE64(buf, e)
	}
	return buf
}

// Overrides is a partial update: field name to new value, absent fields
// keep their stored bytes. Values must match the field kind exactly.
type Overrides map[string]any

// applyOverridesInto builds the proposed payload into buf and counts the
// overridden fields whose bytes actually differ from the stored ones.
func (tbl *Table) applyOverridesInto(buf []byte, old Record, over Overrides) (payload []byte, changed int) {
	for name := range over {
		tbl.FieldNamed(name) // reject unknown names before building anything
	}
	for i, f := range tbl.fields {
		sp := old.spans[i]
		v, ok := over[f.Name]
		if !ok {
			buf = appendRaw(buf, old.data[sp.start:sp.end])
			continue
		}
		fieldStart := len(buf)
		buf = appendFieldValue(buf, tbl, f, v)
		if !bytes.Equal(buf[fieldStart:], old.data[sp.start:sp.end]) {
			changed++
		}
	}
	return buf, changed
}

func appendFieldValue(buf []byte, tbl *Table, f FieldDef, v any) []byte {
	badType := func() []byte {
		panic(fmt.Errorf("%s.%s is %v, got incompatible value %T", tbl.name, f.Name, f.Kind, v))
	}
	switch f.Kind {
	case KindUint64:
		u, ok := v.(uint64)
		if !ok {
			return badType()
		}
		return appendLE64(buf, u)
	case KindUint32:
		u, ok := v.(uint32)
		if !ok {
			return badType()
		}
		return appendLE32(buf, u)
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return badType()
		}
		if b {
			return append(buf, 1)
		}
		return append(buf, 0)
	case KindString:
		s, ok := v.(string)
		if !ok {
			return badType()
		}
		buf = appendLE32(buf, uint32(len(s)))
		return AppendKeyString(buf, s)
	case KindBytes:
		b, ok := v.([]byte)
		if !ok {
			return badType()
		}
		buf = appendLE32(buf, uint32(len(b)))
		return appendRaw(buf, b)
	case KindStringList:
		l, ok := v.([]string)
		if !ok {
			return badType()
		}
		return appendStringList(buf, l)
	case KindUint64List:
		l, ok := v.([]uint64)
		if !ok {
			return badType()
		}
		return appendUint64List(buf, l)
	default:
		panic(fmt.Errorf("%s.%s: unsupported field kind %v", tbl.name, f.Name, f.Kind))
	}
}
