package ixdb

import (
	"fmt"
	"strings"
)

type Schema struct {
	tables            []*Table
	tablesByLowerName map[string]*Table
}

func NewSchema() *Schema {
	return &Schema{
		tablesByLowerName: make(map[string]*Table),
	}
}

func (scm *Schema) init() {
	if scm.tablesByLowerName == nil {
		scm.tablesByLowerName = make(map[string]*Table)
	}
}

func (scm *Schema) Tables() []*Table {
	return append([]*Table(nil), scm.tables...)
}

func (scm *Schema) TableNamed(name string) *Table {
	return scm.tablesByLowerName[strings.ToLower(name)]
}

func (scm *Schema) addTable(tbl *Table) {
	lower := strings.ToLower(tbl.name)
	if scm.tablesByLowerName[lower] != nil {
		panic(fmt.Errorf("schema already has table named %q", tbl.name))
	}
	tbl.pos = len(scm.tables)
	scm.tables = append(scm.tables, tbl)
	scm.tablesByLowerName[lower] = tbl
}

// FieldKind enumerates the value shapes a record field can take. The kind
// determines both the packed payload layout and the accessors that apply.
type FieldKind int

const (
	KindUint64 FieldKind = iota
	KindUint32
	KindBool
	KindString
	KindBytes
	KindStringList
	KindUint64List
)

func (k FieldKind) String() string {
	switch k {
	case KindUint64:
		return "uint64"
	case KindUint32:
		return "uint32"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindStringList:
		return "[]string"
	case KindUint64List:
		return "[]uint64"
	default:
		return fmt.Sprintf("invalid kind %d", int(k))
	}
}

type FieldDef struct {
	Name string
	Kind FieldKind
}

type bucketName []byte

func makeBucketName(name string) bucketName {
	return bucketName(name)
}

func (bn bucketName) String() string {
	return string(bn)
}

func (bn bucketName) Raw() []byte {
	return []byte(bn)
}
