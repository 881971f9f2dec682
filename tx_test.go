package ixdb

import (
	"os"
	"strings"
	"testing"
	"unsafe"
)

func TestWriteVisibility(t *testing.T) {
	db := setup(t, testSchema)

	db.Write(func(tx *Tx) {
		id := must(insertUser(tx, "ada", nil, 100))
		// uncommitted mutations are visible within the same transaction
		rec, ok := tx.Get(userTable, id)
		deepEqual(t, ok, true)
		deepEqual(t, rec.String("userName"), "ada")
		rec, ok = tx.Lookup(userByName, KeyString("ada"))
		deepEqual(t, ok, true)
		deepEqual(t, rec.ID(), id)
	})

	db.Read(func(tx *Tx) {
		_, ok := tx.Get(userTable, 1)
		deepEqual(t, ok, true)
	})
}

func TestManualTxLifecycle(t *testing.T) {
	db := setup(t, testSchema)

	// discarding a write transaction without Commit aborts it
	tx := db.BeginUpdate()
	_ = must(insertUser(tx, "gone", nil, 1))
	tx.Close()

	db.Read(func(tx *Tx) {
		_, ok := tx.Lookup(userByName, KeyString("gone"))
		deepEqual(t, ok, false)
	})

	tx = db.BeginUpdate()
	_ = must(insertUser(tx, "kept", nil, 1))
	ensure(tx.Commit())
	tx.Close()

	db.Read(func(tx *Tx) {
		_, ok := tx.Lookup(userByName, KeyString("kept"))
		deepEqual(t, ok, true)
	})
}

func TestOpenTxnTracking(t *testing.T) {
	db := setup(t, testSchema)

	deepEqual(t, db.DescribeOpenTxns(), "NO OPEN TRANSACTIONS")

	tx := db.BeginRead()
	if s := db.DescribeOpenTxns(); !strings.Contains(s, "1 OPEN TRANSACTIONS") {
		t.Errorf("** got %q", s)
	}
	deepEqual(t, db.ReaderCount.Load(), int64(1))
	tx.Close()
	deepEqual(t, db.ReaderCount.Load(), int64(0))
	deepEqual(t, db.DescribeOpenTxns(), "NO OPEN TRANSACTIONS")
}

func TestVerboseLogging(t *testing.T) {
	var lines []string
	db := must(Open(tempDBFile(t), testSchema, Options{
		IsTesting: true,
		Verbose:   true,
		Logf: func(format string, args ...any) {
			lines = append(lines, format)
		},
	}))
	defer db.Close()

	db.Write(func(tx *Tx) {
		_ = must(insertUser(tx, "logme", nil, 1))
		tx.Delete(userTable, 99)
	})
	if len(lines) < 2 {
		t.Fatalf("** got %d log lines, wanted insert and delete traces", len(lines))
	}
}

// Views handed out inside a read transaction point into the engine's
// mapped region, confirming that no copy happened on the way out.
func TestViewsAliasMappedRegion(t *testing.T) {
	path := tempDBFile(t)
	db := must(Open(path, testSchema, Options{IsTesting: true}))
	defer db.Close()

	db.Write(func(tx *Tx) {
		_ = must(insertUser(tx, "mapped", []byte{1, 2, 3, 4}, 77))
	})

	fi := must(os.Stat(path))
	info := db.Bolt().Info()
	lo := info.Data
	hi := lo + uintptr(fi.Size())

	db.Read(func(tx *Tx) {
		rec, ok := tx.Lookup(userByName, KeyString("mapped"))
		deepEqual(t, ok, true)
		hash := rec.Bytes("passwordHash")
		p := uintptr(unsafe.Pointer(&hash[0]))
		if p < lo || p >= hi {
			t.Errorf("** view pointer %x outside mapped region [%x, %x)", p, lo, hi)
		}
	})
}

func TestDump(t *testing.T) {
	db := setup(t, testSchema)
	seedUsers(t, db)

	db.Read(func(tx *Tx) {
		s := tx.Dump(DumpAll)
		for _, want := range []string{"User (6 rows", "User.i.userName UNIQUE", "User.i.created", `userName="alice"`} {
			if !strings.Contains(s, want) {
				t.Errorf("** dump is missing %q:\n%s", want, s)
			}
		}
	})
}

func TestTableStats(t *testing.T) {
	db := setup(t, testSchema)
	seedUsers(t, db)

	db.Read(func(tx *Tx) {
		s := tx.TableStats(userTable)
		deepEqual(t, s.Rows, 6)
		deepEqual(t, s.IndexRows, 12) // 6 in each of the two indices
	})
}
