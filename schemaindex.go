package ixdb

import (
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

type Index struct {
	table     *Table
	pos       int // index in table.indices, unstable across code changes
	name      string
	buck      bucketName
	isUnique  bool
	subkeyer  func(rec Record) []byte
	subkeyLen int
}

func AddIndex(name string) *Index {
	return &Index{name: name}
}

// Unique constrains the index to at most one record per key. Inserting or
// updating into an occupied key fails with UniqueConstraintError.
func (idx *Index) Unique() *Index {
	idx.isUnique = true
	return idx
}

// Dupsort installs a custom duplicate order: fn must return exactly width
// bytes whose memcmp order is the desired order of records sharing a key.
// The 8-byte primary key id is still appended as the final tiebreak, so
// equal subkeys fall back to insertion order for auto-assigned ids.
func (idx *Index) Dupsort(width int, fn func(rec Record) []byte) *Index {
	if idx.isUnique {
		panic(fmt.Errorf("index %q: Dupsort is only valid on non-unique indices", idx.name))
	}
	if width <= 0 || fn == nil {
		panic(fmt.Errorf("index %q: Dupsort requires a positive width and a subkey func", idx.name))
	}
	idx.subkeyer = fn
	idx.subkeyLen = width
	return idx
}

func (idx *Index) requireTable() {
	if idx.table == nil {
		panic(fmt.Errorf("index %q was not added to a table", idx.name))
	}
}

func (idx *Index) Table() *Table {
	return idx.table
}

func (idx *Index) ShortName() string {
	return idx.name
}

func (idx *Index) FullName() string {
	idx.requireTable()
	return idx.table.name + "." + idx.name
}

func (idx *Index) bucketIn(btx *bbolt.Tx) *bbolt.Bucket {
	return nonNil(btx.Bucket(idx.buck.Raw()))
}

// entrySuffixLen is the number of bytes a duplicate entry carries after the
// extractor-produced index key: the custom subkey, if any, plus the id.
func (idx *Index) entrySuffixLen() int {
	if idx.isUnique {
		return 0
	}
	return idx.subkeyLen + 8
}

// entryID recovers the primary key id from an index entry. Unique indices
// store the id as the entry value; duplicate indices pack it into the last
// 8 bytes of the entry key.
func (idx *Index) entryID(k, v []byte) uint64 {
	if idx.isUnique {
		if len(v) != 8 {
			panic(tableErrf(idx.table, idx, k, nil, "invalid index value: got %d bytes, wanted 8", len(v)))
		}
		return binary.BigEndian.Uint64(v)
	}
	if len(k) < idx.entrySuffixLen() {
		panic(tableErrf(idx.table, idx, k, nil, "invalid index entry: %d bytes is shorter than the %d-byte suffix", len(k), idx.entrySuffixLen()))
	}
	return binary.BigEndian.Uint64(k[len(k)-8:])
}

// entryIndexKey strips the duplicate suffix, returning the extractor key.
func (idx *Index) entryIndexKey(k []byte) []byte {
	if idx.isUnique {
		return k
	}
	n := idx.entrySuffixLen()
	if len(k) < n {
		panic(tableErrf(idx.table, idx, k, nil, "invalid index entry: %d bytes is shorter than the %d-byte suffix", len(k), n))
	}
	return k[:len(k)-n]
}
