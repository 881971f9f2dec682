package ixdb

import (
	"github.com/cespare/xxhash/v2"
)

type TableStats struct {
	Rows      int
	IndexRows int

	DataSize   int
	DataAlloc  int
	IndexSize  int
	IndexAlloc int
}

func (ts *TableStats) TotalSize() int {
	return ts.DataSize + ts.IndexSize
}

func (ts *TableStats) TotalAlloc() int {
	return ts.DataAlloc + ts.IndexAlloc
}

func (tx *Tx) TableStats(tbl *Table) TableStats {
	bs := tbl.dataBucketIn(tx.btx).Stats()
	result := TableStats{
		Rows:      bs.KeyN,
		DataSize:  bs.LeafInuse,
		DataAlloc: bs.BranchAlloc + bs.LeafAlloc,
	}

	for _, idx := range tbl.indices {
		bs = idx.bucketIn(tx.btx).Stats()
		result.IndexRows += bs.KeyN
		result.IndexSize += bs.LeafInuse
		result.IndexAlloc += bs.BranchAlloc + bs.LeafAlloc
	}

	return result
}

// TableChecksum folds the byte-image of the table (every key and value of
// the main bucket and all index buckets) into a single hash. Two
// transactions see the same checksum iff they see the same bytes, which is
// how tests assert that an aborted transaction left no trace.
func (tx *Tx) TableChecksum(tbl *Table) uint64 {
	h := xxhash.New()
	writeBucketChecksum(h, tx, tbl.buck)
	for _, idx := range tbl.indices {
		writeBucketChecksum(h, tx, idx.buck)
	}
	return h.Sum64()
}

func writeBucketChecksum(h *xxhash.Digest, tx *Tx, buck bucketName) {
	_ = must(h.Write(buck.Raw()))
	c := nonNil(tx.btx.Bucket(buck.Raw())).Cursor()
	var lenbuf [8]byte
	for k, v := c.First(); k != nil; k, v = c.Next() {
		putLE64(lenbuf[:], uint64(len(k)))
		_ = must(h.Write(lenbuf[:]))
		_ = must(h.Write(k))
		putLE64(lenbuf[:], uint64(len(v)))
		_ = must(h.Write(lenbuf[:]))
		_ = must(h.Write(v))
	}
}
