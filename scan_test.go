package ixdb

import (
	"fmt"
	"testing"
)

// Raw bucket walks through the range engine, teacher-style: seed known ids
// and exercise every positioning mode against the main table bucket.
func TestRawRangePositioning(t *testing.T) {
	db := setup(t, testSchema)
	db.Write(func(tx *Tx) {
		for _, id := range []uint64{2, 4, 6, 8} {
			_ = must(tx.InsertWithID(userTable, id, NewRecordBuilder(userTable).String(fmt.Sprintf("u%d", id)).Bytes(nil).Uint64(id)))
		}
	})

	o := func(name string, start []byte, reverse bool, exp ...uint64) {
		t.Helper()
		t.Run(name, func(t *testing.T) {
			db.Read(func(tx *Tx) {
				ids := []uint64{}
				tx.ForeachRaw("User", start, nil, reverse, func(k, v []byte) bool {
					ids = append(ids, decodeKeyUint64(k))
					return true
				})
				if len(exp) == 0 {
					isempty(t, ids)
				} else {
					deepEqual(t, ids, exp)
				}
			})
		})
	}

	o("full forward", nil, false, 2, 4, 6, 8)
	o("full reverse", nil, true, 8, 6, 4, 2)

	o("forward from existing", KeyUint64(4), false, 4, 6, 8)
	o("forward from missing", KeyUint64(5), false, 6, 8)
	o("forward from before all", KeyUint64(1), false, 2, 4, 6, 8)
	o("forward from past end", KeyUint64(9), false)

	o("reverse from existing", KeyUint64(4), true, 4, 2)
	o("reverse from missing", KeyUint64(5), true, 4, 2)
	o("reverse from past end", KeyUint64(9), true, 8, 6, 4, 2)
	o("reverse from before all", KeyUint64(1), true)
}

func TestScanEarlyAbort(t *testing.T) {
	db := setup(t, testSchema)
	seedUsers(t, db)

	db.Read(func(tx *Tx) {
		var visits int
		tx.Foreach(userTable, Forward(), func(r Record) bool {
			visits++
			return visits < 2
		})
		deepEqual(t, visits, 2)
	})
}

func TestUserTableUnaffectedByOtherTables(t *testing.T) {
	db := setup(t, testSchema)
	seedUsers(t, db)
	db.Write(func(tx *Tx) {
		_ = must(insertPhrase(tx, "unrelated data"))
	})

	db.Read(func(tx *Tx) {
		deepEqual(t, userIDs(tx, Forward()), []uint64{1, 2, 3, 4, 5, 6})
		ids := []uint64{}
		tx.Foreach(phraseTable, Forward(), func(r Record) bool {
			ids = append(ids, r.ID())
			return true
		})
		deepEqual(t, ids, []uint64{1})
	})
}
