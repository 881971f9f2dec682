package ixdb

import (
	"fmt"

	"go.etcd.io/bbolt"
)

type Table struct {
	schema          *Schema
	name            string
	pos             int // index in schema.tables, unstable across code changes
	buck            bucketName
	fields          []FieldDef
	fieldsByName    map[string]int
	indexer         func(rec Record, ib *IndexBuilder)
	indices         []*Index
	indicesByName   map[string]*Index
	suppressContent bool
}

type tableOpt int

const (
	SuppressContentWhenLogging = tableOpt(1)
)

// AddTable defines a table with the given packed-record layout. The indexer
// runs against a bound record view and contributes zero or more keys per
// index; a nil indexer is allowed for tables without indices.
func AddTable(scm *Schema, name string, fields []FieldDef, indexer func(rec Record, ib *IndexBuilder), indices []*Index, opts ...any) *Table {
	scm.init()
	if len(fields) == 0 {
		panic(fmt.Sprintf("%s: table must have at least one field", name))
	}
	tbl := &Table{
		schema:        scm,
		name:          name,
		buck:          makeBucketName(name),
		fields:        fields,
		fieldsByName:  make(map[string]int, len(fields)),
		indexer:       indexer,
		indicesByName: make(map[string]*Index),
	}
	for i, f := range fields {
		if _, dup := tbl.fieldsByName[f.Name]; dup {
			panic(fmt.Errorf("%s: duplicate field %q", name, f.Name))
		}
		tbl.fieldsByName[f.Name] = i
	}
	scm.addTable(tbl)

	for _, idx := range indices {
		tbl.AddIndex(idx)
	}
	if indexer == nil && len(tbl.indices) > 0 {
		panic(fmt.Errorf("%s: table has indices but no indexer", name))
	}

	for _, opt := range opts {
		switch opt := opt.(type) {
		case tableOpt:
			if opt == SuppressContentWhenLogging {
				tbl.suppressContent = true
			}
		default:
			panic(fmt.Errorf("invalid option %T %v", opt, opt))
		}
	}

	return tbl
}

func (tbl *Table) Name() string {
	return tbl.name
}

func (tbl *Table) AddIndex(idx *Index) *Table {
	if tbl.indicesByName[idx.name] != nil {
		panic(fmt.Errorf("table %s already has index named %q", tbl.name, idx.name))
	}
	if idx.table != nil {
		panic(fmt.Errorf("index %q already belongs to table %s", idx.name, idx.table.name))
	}
	idx.pos = len(tbl.indices)
	idx.table = tbl
	idx.buck = makeBucketName(tbl.name + "__" + idx.name)
	tbl.indices = append(tbl.indices, idx)
	tbl.indicesByName[idx.name] = idx
	return tbl
}

func (tbl *Table) Indices() []*Index {
	return append([]*Index(nil), tbl.indices...)
}

func (tbl *Table) IndexNamed(name string) *Index {
	return tbl.indicesByName[name]
}

func (tbl *Table) Fields() []FieldDef {
	return append([]FieldDef(nil), tbl.fields...)
}

// FieldNamed returns the position of the named field. Field names are part
// of the schema; asking for an unknown one is a programming error.
func (tbl *Table) FieldNamed(name string) int {
	i, ok := tbl.fieldsByName[name]
	if !ok {
		panic(fmt.Errorf("%s: no field named %q", tbl.name, name))
	}
	return i
}

func (tbl *Table) dataBucketIn(btx *bbolt.Tx) *bbolt.Bucket {
	return nonNil(btx.Bucket(tbl.buck.Raw()))
}

func (tbl *Table) encodeID(buf []byte, id uint64) []byte {
	if id == 0 {
		panic(fmt.Errorf("attempt to encode zero primary key for table %s", tbl.name))
	}
	return AppendKeyUint64(buf, id)
}

func (tbl *Table) indexRowsOf(rec Record) indexRows {
	ib := IndexBuilder{rec: rec}
	if tbl.indexer != nil {
		tbl.indexer(rec, &ib)
	}
	ib.finalize()
	return ib.rows
}
