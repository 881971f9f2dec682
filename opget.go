package ixdb

// Get returns a view of the record with the given id. The view aliases
// the transaction's mapped memory and must not outlive it.
func (tx *Tx) Get(tbl *Table, id uint64) (Record, bool) {
	raw := tx.getRawByID(tbl, id)
	tx.db.ReadCount.Add(1)
	if raw == nil {
		if tx.isVerboseLoggingEnabled() {
			tx.db.logf("db: GET.NOTFOUND %s/%d", tbl.name, id)
		}
		return Record{}, false
	}
	rec := tbl.mustBindRecord(id, raw)
	if tx.isVerboseLoggingEnabled() {
		tx.db.logf("db: GET %s/%d => %s", tbl.name, id, loggableRecord(rec))
	}
	return rec, true
}

func (tx *Tx) Exists(tbl *Table, id uint64) bool {
	found := tx.getRawByID(tbl, id) != nil
	if tx.isVerboseLoggingEnabled() {
		tx.db.logf("db: EXISTS.%s %s/%d", map[bool]string{false: "NO", true: "YES"}[found], tbl.name, id)
	}
	return found
}

func (tx *Tx) getRawByID(tbl *Table, id uint64) []byte {
	if tx == nil {
		panic("nil tx")
	}
	if id == 0 {
		return nil
	}
	keyBuf := keyBytesPool.Get().([]byte)
	keyRaw := tbl.encodeID(keyBuf[:0], id)
	defer releaseKeyBytes(keyBuf)
	return tbl.dataBucketIn(tx.btx).Get(keyRaw)
}
