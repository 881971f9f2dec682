package ixdb

import (
	"bytes"
	"fmt"
)

// Update rewrites the record behind rec with the overridden fields applied,
// keeping every index in sync. Absent fields keep their stored bytes. When
// the proposed record is byte-for-byte identical to the stored one, Update
// returns 0 and writes nothing; otherwise the return value is non-zero
// (callers must not rely on its magnitude).
func (tx *Tx) Update(tbl *Table, rec Record, over Overrides) (int, error) {
	if rec.table != tbl {
		panic(fmt.Errorf("%s: record belongs to table %s", tbl.name, rec.table.name))
	}

	valueBuf := valueBytesPool.Get().([]byte)
	payload, changed := tbl.applyOverridesInto(valueBuf[:0], rec, over)
	if bytes.Equal(payload, rec.data) {
		valueBytesPool.Put(valueBuf[:0])
		if tx.isVerboseLoggingEnabled() {
			tx.db.logf("db: UPDATE.NOOP %s/%d", tbl.name, rec.id)
		}
		return 0, nil
	}
	tx.addValueBuf(valueBuf)

	newRec := tbl.mustBindRecord(rec.id, payload)
	oldRows := tbl.indexRowsOf(rec)
	newRows := tbl.indexRowsOf(newRec)

	var toRemove, toAdd indexRows
	diffIndexRows(oldRows, newRows,
		func(row IndexRow) { toRemove = append(toRemove, row) },
		func(row IndexRow) { toAdd = append(toAdd, row) })

	// An existing entry that already maps to this very record is not a
	// conflict; anything else under the key is.
	for _, row := range toAdd {
		if !row.Index.isUnique {
			continue
		}
		idxBuck := row.Index.bucketIn(tx.btx)
		if v := idxBuck.Get(row.KeyRaw); v != nil && row.Index.entryID(row.KeyRaw, v) != rec.id {
			if tx.isVerboseLoggingEnabled() {
				tx.db.logf("db: UPDATE.CONFLICT %s/%d on %s", tbl.name, rec.id, row.Index.FullName())
			}
			return 0, &UniqueConstraintError{tbl, row.Index}
		}
	}

	tx.markWritten()
	tx.db.WriteCount.Add(1)

	keyBuf := keyBytesPool.Get().([]byte)
	keyRaw := tbl.encodeID(keyBuf[:0], rec.id)
	defer releaseKeyBytes(keyBuf)

	dataBuck := tbl.dataBucketIn(tx.btx)
	ensure(dataBuck.Put(keyRaw, payload))

	tx.deleteIndexRows(toRemove, rec.id)
	tx.putIndexRows(toAdd, rec.id)

	if tx.isVerboseLoggingEnabled() {
		tx.db.logf("db: UPDATE %s/%d => %s", tbl.name, rec.id, loggableRecord(newRec))
	}
	return changed, nil
}
