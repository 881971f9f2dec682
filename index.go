package ixdb

import (
	"bytes"
	"fmt"
	"sort"
)

// IndexRow is one entry an indexer contributed for a record. KeyRaw is the
// extractor key plus, for duplicate indices with a custom order, the
// subkey; ikLen marks where the extractor key ends.
type IndexRow struct {
	Index  *Index
	KeyRaw []byte
	ikLen  int
}

// IndexBuilder collects the index keys an indexer emits for one record.
// Emitting no key for an index simply leaves the record out of it, which
// is how filtered indices work; emitting several keys makes the record
// appear once per key.
type IndexBuilder struct {
	rec  Record
	rows indexRows
}

func (b *IndexBuilder) Add(idx *Index, key []byte) {
	idx.requireTable()
	if idx.table != b.rec.table {
		panic(fmt.Errorf("%s: index belongs to table %s, record to table %s", idx.FullName(), idx.table.name, b.rec.table.name))
	}
	kr := appendRaw(make([]byte, 0, len(key)+idx.subkeyLen), key)
	ikLen := len(kr)
	if idx.subkeyer != nil {
		sub := idx.subkeyer(b.rec)
		if len(sub) != idx.subkeyLen {
			panic(fmt.Errorf("%s: subkey func returned %d bytes, declared width is %d", idx.FullName(), len(sub), idx.subkeyLen))
		}
		kr = appendRaw(kr, sub)
	}
	b.rows = append(b.rows, IndexRow{idx, kr, ikLen})
}

func (b *IndexBuilder) finalize() {
	sort.Sort(b.rows)
}

type indexRows []IndexRow

func (a indexRows) Len() int      { return len(a) }
func (a indexRows) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a indexRows) Less(i, j int) bool {
	lp, rp := a[i].Index.pos, a[j].Index.pos
	if lp != rp {
		return lp < rp
	}
	return bytes.Compare(a[i].KeyRaw, a[j].KeyRaw) < 0
}

func compareIndexRows(a, b IndexRow) int {
	if c := a.Index.pos - b.Index.pos; c != 0 {
		return c
	}
	return bytes.Compare(a.KeyRaw, b.KeyRaw)
}

// diffIndexRows walks two sorted row sets and reports the multiset
// difference: rows only in old are removed, rows only in new are added.
// Rows present in both are left untouched, which is what makes updates
// that do not move a key cheap.
func diffIndexRows(old, new indexRows, removed, added func(row IndexRow)) {
	i, j := 0, 0
	for i < len(old) && j < len(new) {
		switch c := compareIndexRows(old[i], new[j]); {
		case c < 0:
			removed(old[i])
			i++
		case c > 0:
			added(new[j])
			j++
		default:
			i++
			j++
		}
	}
	for ; i < len(old); i++ {
		removed(old[i])
	}
	for ; j < len(new); j++ {
		added(new[j])
	}
}

// entryKey materializes the bucket key for a row: duplicate entries carry
// the id as the final fixed-width suffix, unique entries are the key alone
// (the id goes into the entry value instead).
func entryKey(row IndexRow, id uint64) []byte {
	if row.Index.isUnique {
		return row.KeyRaw
	}
	return AppendKeyUint64(appendRaw(make([]byte, 0, len(row.KeyRaw)+8), row.KeyRaw), id)
}
