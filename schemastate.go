package ixdb

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

var metaBucket = makeBucketName("__meta")

func (db *DB) tableState(tbl *Table) *tableState {
	return db.tableStates[tbl.pos]
}

// tableState is the per-table record in the __meta bucket, keyed by table
// name. It owns the monotonic primary key counter, which must never move
// backwards, including across deletes and process restarts.
type tableState struct {
	LastID   uint64    `msgpack:"id"`
	LastSeen time.Time `msgpack:"t"`

	table *Table `msgpack:"-"`
}

func prepareTable(tx *Tx, tbl *Table, now time.Time) *tableState {
	_ = must(tx.btx.CreateBucketIfNotExists(tbl.buck.Raw()))
	for _, idx := range tbl.indices {
		_ = must(tx.btx.CreateBucketIfNotExists(idx.buck.Raw()))
	}
	metaBuck := must(tx.btx.CreateBucketIfNotExists(metaBucket.Raw()))

	ts := new(tableState)
	if raw := metaBuck.Get([]byte(tbl.name)); raw != nil {
		err := msgpack.Unmarshal(raw, ts)
		if err != nil {
			panic(tableErrf(tbl, nil, nil, err, "failed to decode table state"))
		}
	}
	ts.table = tbl
	ts.LastSeen = now
	return ts
}

func (ts *tableState) save(tx *Tx) {
	raw, err := msgpack.Marshal(ts)
	if err != nil {
		panic(tableErrf(ts.table, nil, nil, err, "failed to encode table state"))
	}
	metaBuck := nonNil(tx.btx.Bucket(metaBucket.Raw()))
	ensure(metaBuck.Put([]byte(ts.table.name), raw))
}
