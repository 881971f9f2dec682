package ixdb

// Delete removes the record with the given id and every index entry
// derived from it. Deleting an absent id is a no-op, not an error.
func (tx *Tx) Delete(tbl *Table, id uint64) bool {
	raw := tx.getRawByID(tbl, id)
	if raw == nil {
		if tx.isVerboseLoggingEnabled() {
			tx.db.logf("db: DELETE.NOOP %s/%d", tbl.name, id)
		}
		return false
	}

	rec := tbl.mustBindRecord(id, raw)
	rows := tbl.indexRowsOf(rec)

	tx.markWritten()
	tx.db.WriteCount.Add(1)

	tx.deleteIndexRows(rows, id)

	keyBuf := keyBytesPool.Get().([]byte)
	keyRaw := tbl.encodeID(keyBuf[:0], id)
	defer releaseKeyBytes(keyBuf)
	ensure(tbl.dataBucketIn(tx.btx).Delete(keyRaw))

	if tx.isVerboseLoggingEnabled() {
		tx.db.logf("db: DELETE %s/%d", tbl.name, id)
	}
	return true
}
