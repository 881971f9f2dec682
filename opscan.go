package ixdb

import (
	"bytes"
	"fmt"
	"log/slog"
)

// ScanOptions positions a scan. Start is raw key-codec bytes: a primary
// key for table scans, an index key for index scans, a subkey for
// duplicate-group scans. Nil starts at the extreme for the direction.
// Forward scans begin at the first entry ≥ Start, reverse scans at the
// last entry ≤ Start; a Start between entries lands on the adjacent valid
// position.
type ScanOptions struct {
	Reverse bool
	Start   []byte
}

func Forward() ScanOptions {
	return ScanOptions{}
}

func Reverse() ScanOptions {
	return ScanOptions{Reverse: true}
}

func (so ScanOptions) From(start []byte) ScanOptions {
	so.Start = start
	return so
}

func (so ScanOptions) rangeOver(upperPrefixed bool) rawRange {
	rr := rawRange{reverse: so.Reverse}
	if so.Reverse {
		rr.upper = so.Start
		rr.upperPrefixed = upperPrefixed
	} else {
		rr.lower = so.Start
	}
	return rr
}

// Foreach visits the table's records in primary key order. The visitor
// returns false to stop early. Start, when set, is an 8-byte encoded id
// (see KeyUint64).
func (tx *Tx) Foreach(tbl *Table, opt ScanOptions, f func(rec Record) bool) {
	rr := opt.rangeOver(false)
	rc := rr.newCursor(tbl.dataBucketIn(tx.btx).Cursor(), slog.Default())
	for rc.Next() {
		rec := tbl.mustBindRecord(decodeKeyUint64(rc.Key()), rc.Value())
		if !f(rec) {
			break
		}
	}
}

// ForeachIndex visits records in index order, once per index entry, so a
// record indexed under several keys is visited once per key. The visitor
// receives the raw entry key (index key, plus subkey and id for duplicate
// indices) so composite-key scans can parse it and stop on a prefix
// change. Returns the total number of entries in the index, regardless of
// where the scan started or stopped; totals are exact in read-only
// transactions.
func (tx *Tx) ForeachIndex(idx *Index, opt ScanOptions, f func(ik []byte, rec Record) bool) int {
	idx.requireTable()
	idxBuck := idx.bucketIn(tx.btx)

	rr := opt.rangeOver(!idx.isUnique)
	rc := rr.newCursor(idxBuck.Cursor(), slog.Default())
	for rc.Next() {
		rec := tx.resolveIndexEntry(idx, rc.Key(), rc.Value())
		if !f(rc.Key(), rec) {
			break
		}
	}
	return idxBuck.Stats().KeyN
}

// ForeachDup visits the records stored under one duplicate-index key, in
// duplicate order. opt.Start, when set, is a subkey positioning within
// the group with the usual ≥/≤ rules.
func (tx *Tx) ForeachDup(idx *Index, key []byte, opt ScanOptions, f func(rec Record) bool) {
	idx.requireTable()
	if idx.isUnique {
		panic(fmt.Errorf("%s: ForeachDup is only valid on non-unique indices", idx.FullName()))
	}

	suffix := idx.entrySuffixLen()
	rr := rawRange{prefix: key, reverse: opt.Reverse}
	if opt.Start != nil {
		seek := appendRaw(appendRaw(make([]byte, 0, len(key)+len(opt.Start)), key), opt.Start)
		if opt.Reverse {
			rr.upper, rr.upperPrefixed = seek, true
		} else {
			rr.lower = seek
		}
	}

	rc := rr.newCursor(idx.bucketIn(tx.btx).Cursor(), slog.Default())
	for rc.Next() {
		if len(rc.Key()) != len(key)+suffix {
			// an entry of a longer index key sharing the byte prefix
			continue
		}
		rec := tx.resolveIndexEntry(idx, rc.Key(), rc.Value())
		if !f(rec) {
			break
		}
	}
}

// ForeachKey visits the distinct index keys, one visit per key no matter
// how many records share it. The key view aliases mapped memory and is
// valid for the transaction.
func (tx *Tx) ForeachKey(idx *Index, opt ScanOptions, f func(ik []byte) bool) {
	idx.requireTable()

	rr := opt.rangeOver(!idx.isUnique)
	rc := rr.newCursor(idx.bucketIn(tx.btx).Cursor(), slog.Default())
	var prev []byte
	var seen bool
	for rc.Next() {
		ik := idx.entryIndexKey(rc.Key())
		if seen && bytes.Equal(prev, ik) {
			continue
		}
		prev, seen = ik, true
		if !f(ik) {
			break
		}
	}
}

// ForeachRaw is the escape hatch: it walks any sub-database of the schema
// by its bucket name (a table name or "<Table>__<index>"), yielding raw
// keys and values. start and startSub are concatenated into the seek
// position; reverse landing treats entries extending it as equal.
func (tx *Tx) ForeachRaw(subdb string, start, startSub []byte, reverse bool, f func(k, v []byte) bool) {
	buck := nonNil(tx.btx.Bucket([]byte(subdb)))

	var seek []byte
	if start != nil || startSub != nil {
		seek = appendRaw(appendRaw(make([]byte, 0, len(start)+len(startSub)), start), startSub)
	}
	rr := rawRange{reverse: reverse}
	if reverse {
		rr.upper, rr.upperPrefixed = seek, true
	} else {
		rr.lower = seek
	}

	rc := rr.newCursor(buck.Cursor(), slog.Default())
	for rc.Next() {
		if !f(rc.Key(), rc.Value()) {
			break
		}
	}
}

func (tx *Tx) resolveIndexEntry(idx *Index, k, v []byte) Record {
	id := idx.entryID(k, v)
	raw := tx.getRawByID(idx.table, id)
	if raw == nil {
		panic(tableErrf(idx.table, idx, k, nil, "index entry points to missing record %d", id))
	}
	return idx.table.mustBindRecord(id, raw)
}
