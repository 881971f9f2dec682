package ixdb

import "bytes"

// Lookup resolves an index key to a record view. For duplicate indices
// with several matching records it returns the first one in duplicate
// order; callers that need a particular record must scan instead.
func (tx *Tx) Lookup(idx *Index, key []byte) (Record, bool) {
	id, ok := tx.lookupID(idx, key)
	tx.db.ReadCount.Add(1)
	if !ok {
		if tx.isVerboseLoggingEnabled() {
			tx.db.logf("db: LOOKUP.NOTFOUND %s/%s", idx.FullName(), hexstr(key))
		}
		return Record{}, false
	}
	raw := tx.getRawByID(idx.table, id)
	if raw == nil {
		panic(tableErrf(idx.table, idx, key, nil, "index entry points to missing record %d", id))
	}
	rec := idx.table.mustBindRecord(id, raw)
	if tx.isVerboseLoggingEnabled() {
		tx.db.logf("db: LOOKUP %s/%s => %s", idx.FullName(), hexstr(key), loggableRecord(rec))
	}
	return rec, true
}

// LookupID resolves an index key to a primary key id without decoding the
// record.
func (tx *Tx) LookupID(idx *Index, key []byte) (uint64, bool) {
	id, ok := tx.lookupID(idx, key)
	if tx.isVerboseLoggingEnabled() {
		if ok {
			tx.db.logf("db: LOOKUP_ID %s/%s => %d", idx.FullName(), hexstr(key), id)
		} else {
			tx.db.logf("db: LOOKUP_ID.NOTFOUND %s/%s", idx.FullName(), hexstr(key))
		}
	}
	return id, ok
}

func (tx *Tx) LookupExists(idx *Index, key []byte) bool {
	_, ok := tx.lookupID(idx, key)
	return ok
}

func (tx *Tx) lookupID(idx *Index, key []byte) (uint64, bool) {
	idx.requireTable()
	idxBuck := idx.bucketIn(tx.btx)

	if idx.isUnique {
		v := idxBuck.Get(key)
		if v == nil {
			return 0, false
		}
		return idx.entryID(key, v), true
	}

	// First duplicate in order. Entries of other index keys that merely
	// share the byte prefix are longer or shorter than key+suffix, so
	// they are skipped, not matched.
	suffix := idx.entrySuffixLen()
	c := idxBuck.Cursor()
	for k, v := c.Seek(key); k != nil && bytes.HasPrefix(k, key); k, v = c.Next() {
		if len(k) != len(key)+suffix {
			continue
		}
		return idx.entryID(k, v), true
	}
	return 0, false
}

// IndexKeys reports, for diagnostics, the keys every index extractor
// produces for the record, grouped by index name. Subkeys and id suffixes
// are not included.
func (tbl *Table) IndexKeys(rec Record) map[string][][]byte {
	rows := tbl.indexRowsOf(rec)
	m := make(map[string][][]byte, len(tbl.indices))
	for _, idx := range tbl.indices {
		m[idx.name] = nil
	}
	for _, row := range rows {
		key := append([]byte(nil), row.KeyRaw[:row.ikLen]...)
		m[row.Index.name] = append(m[row.Index.name], key)
	}
	return m
}
