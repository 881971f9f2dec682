package ixdb

import "fmt"

// Insert adds a new record with an auto-assigned primary key id and
// returns the id. Ids are allocated from the table's persistent counter
// and are never reused, even after the record is deleted. An insert that
// fails on a unique constraint does not consume an id.
func (tx *Tx) Insert(tbl *Table, b *RecordBuilder) (uint64, error) {
	return tx.insert(tbl, 0, b)
}

// InsertWithID adds a new record under a caller-chosen id. The id must be
// non-zero and unused; the auto-id counter is not consulted or advanced.
func (tx *Tx) InsertWithID(tbl *Table, id uint64, b *RecordBuilder) (uint64, error) {
	if id == 0 {
		panic(fmt.Errorf("%s: InsertWithID requires a non-zero id", tbl.name))
	}
	return tx.insert(tbl, id, b)
}

func (tx *Tx) insert(tbl *Table, id uint64, b *RecordBuilder) (uint64, error) {
	if tx == nil {
		panic("nil tx")
	}
	if b.table != tbl {
		panic(fmt.Errorf("%s: record builder belongs to table %s", tbl.name, b.table.name))
	}
	payload := b.finish()

	ts := tx.db.tableState(tbl)
	auto := id == 0
	if auto {
		id = ts.LastID + 1
	}

	rec := tbl.mustBindRecord(id, payload)
	rows := tbl.indexRowsOf(rec)

	dataBuck := tbl.dataBucketIn(tx.btx)

	keyBuf := keyBytesPool.Get().([]byte)
	keyRaw := tbl.encodeID(keyBuf[:0], id)
	defer releaseKeyBytes(keyBuf)

	if !auto && dataBuck.Get(keyRaw) != nil {
		panic(tableErrf(tbl, nil, keyRaw, nil, "duplicate primary key %d", id))
	}

	// Probe every unique index before touching anything, so that a
	// violation leaves no visible mutation behind and the transaction
	// stays usable.
	for _, row := range rows {
		if !row.Index.isUnique {
			continue
		}
		idxBuck := row.Index.bucketIn(tx.btx)
		if idxBuck.Get(row.KeyRaw) != nil {
			if tx.isVerboseLoggingEnabled() {
				tx.db.logf("db: INSERT.CONFLICT %s/%d on %s", tbl.name, id, row.Index.FullName())
			}
			return 0, &UniqueConstraintError{tbl, row.Index}
		}
	}

	tx.markWritten()
	tx.db.WriteCount.Add(1)
	if auto {
		ts.LastID = id
		ts.save(tx)
	}

	ensure(dataBuck.Put(keyRaw, payload))
	tx.putIndexRows(rows, id)

	if tx.isVerboseLoggingEnabled() {
		tx.db.logf("db: INSERT %s/%d => %s", tbl.name, id, loggableRecord(rec))
	}
	return id, nil
}

func (tx *Tx) putIndexRows(rows indexRows, id uint64) {
	var idVal []byte
	for _, row := range rows {
		idxBuck := row.Index.bucketIn(tx.btx)
		if row.Index.isUnique {
			if idVal == nil {
				idVal = AppendKeyUint64(make([]byte, 0, 8), id)
			}
			ensure(idxBuck.Put(row.KeyRaw, idVal))
		} else {
			ensure(idxBuck.Put(entryKey(row, id), emptyIndexValue))
		}
	}
}

func (tx *Tx) deleteIndexRows(rows indexRows, id uint64) {
	for _, row := range rows {
		idxBuck := row.Index.bucketIn(tx.btx)
		if row.Index.isUnique {
			ensure(idxBuck.Delete(row.KeyRaw))
		} else {
			ensure(idxBuck.Delete(entryKey(row, id)))
		}
	}
}
