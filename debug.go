package ixdb

import (
	"fmt"
	"strings"
)

type DumpFlags uint64

const (
	DumpTableHeaders = DumpFlags(1 << iota)
	DumpRows
	DumpStats
	DumpIndices
	DumpIndexRows

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

func (tx *Tx) Dump(f DumpFlags) string {
	var buf strings.Builder
	for _, tbl := range tx.db.schema.tables {
		tx.dumpTable(&buf, f, tbl)
	}
	return buf.String()
}

func (tx *Tx) dumpTable(w *strings.Builder, f DumpFlags, tbl *Table) {
	prefix := tbl.Name()
	s := tx.TableStats(tbl)

	if f.Contains(DumpTableHeaders) {
		fmt.Fprintln(w, dumpSep1)
		fmt.Fprintf(w, "%s (%d rows, xxh %016x)\n", prefix, s.Rows, tx.TableChecksum(tbl))
	}
	if f.Contains(DumpStats) {
		fmt.Fprintf(w, "%s.stats: index_rows = %d, data_size = %d, data_alloc = %d, index_size = %d, index_alloc = %d, total_alloc = %d\n", prefix, s.IndexRows, s.DataSize, s.DataAlloc, s.IndexSize, s.IndexAlloc, s.TotalAlloc())
	}

	if f.Contains(DumpRows) {
		if f.Contains(DumpStats) {
			fmt.Fprintln(w, dumpSep2)
		}
		c := tbl.dataBucketIn(tx.btx).Cursor()
		var rowPos int
		for k, v := c.First(); k != nil; k, v = c.Next() {
			rowPos++
			tx.dumpRow(w, prefix, tbl, rowPos, k, v)
		}
	}

	if f.Contains(DumpIndices) {
		for _, idx := range tbl.indices {
			tx.dumpIndex(w, prefix, f, idx)
		}
	}
}

func (tx *Tx) dumpRow(w *strings.Builder, prefix string, tbl *Table, rowPos int, k, v []byte) {
	id := decodeKeyUint64(k)
	rec, err := tbl.bindRecord(id, v)
	if err != nil {
		fmt.Fprintf(w, "%s.%d = /%d ** ERROR: %v\n", prefix, rowPos, id, err)
		return
	}
	fmt.Fprintf(w, "%s.%d = /%d %s\n", prefix, rowPos, id, recordString(rec))
}

func (tx *Tx) dumpIndex(w *strings.Builder, prefix string, f DumpFlags, idx *Index) {
	fmt.Fprintln(w, dumpSep2)
	prefix = prefix + ".i." + idx.ShortName()
	fmt.Fprintf(w, "%s%s\n", prefix, map[bool]string{false: "", true: " UNIQUE"}[idx.isUnique])

	if f.Contains(DumpIndexRows) {
		c := idx.bucketIn(tx.btx).Cursor()
		var rowPos int
		for k, v := c.First(); k != nil; k, v = c.Next() {
			rowPos++
			fmt.Fprintf(w, "%s.%d: %s => %d\n", prefix, rowPos, hexstr(idx.entryIndexKey(k)), idx.entryID(k, v))
		}
	}
}

// recordString renders a record for dumps and verbose logs.
func recordString(rec Record) string {
	var buf strings.Builder
	buf.WriteByte('{')
	for i, f := range rec.table.fields {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(f.Name)
		buf.WriteByte('=')
		switch f.Kind {
		case KindUint64:
			fmt.Fprintf(&buf, "%d", rec.FieldUint64(i))
		case KindUint32:
			fmt.Fprintf(&buf, "%d", rec.FieldUint32(i))
		case KindBool:
			fmt.Fprintf(&buf, "%v", rec.FieldBool(i))
		case KindString:
			fmt.Fprintf(&buf, "%q", rec.FieldString(i))
		case KindBytes:
			fmt.Fprintf(&buf, "%x", rec.FieldBytes(i))
		case KindStringList:
			fmt.Fprintf(&buf, "%q", rec.FieldStrings(i))
		case KindUint64List:
			fmt.Fprintf(&buf, "%d", rec.FieldUint64s(i))
		}
	}
	buf.WriteByte('}')
	return buf.String()
}

func loggableRecord(rec Record) string {
	if rec.table.suppressContent {
		return "<suppressed>"
	}
	return recordString(rec)
}
