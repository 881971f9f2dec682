package ixdb

import (
	"fmt"
	"runtime/debug"
	"time"

	"go.etcd.io/bbolt"
)

type Tx struct {
	db      *DB
	btx     *bbolt.Tx
	managed bool

	written          bool
	commitDespiteErr bool

	startTime time.Time
	stack     string

	valueBufs [][]byte
}

func (db *DB) newTx(btx *bbolt.Tx, managed bool) *Tx {
	tx := &Tx{
		db:        db,
		btx:       btx,
		managed:   managed,
		startTime: time.Now(),
	}
	if trackTxns {
		tx.stack = string(debug.Stack())
	}
	db.addTx(tx)
	if btx.Writable() {
		db.WriterCount.Add(1)
	} else {
		db.ReaderCount.Add(1)
	}
	return tx
}

func (tx *Tx) DB() *DB {
	return tx.db
}

func (tx *Tx) Schema() *Schema {
	return tx.db.schema
}

func (tx *Tx) IsWritable() bool {
	return tx.btx.Writable()
}

// Tx runs f in a transaction. Writable transactions go through Bolt's
// batching: the entire function may be retried on an internal error, and a
// non-nil error from f rolls everything back unless no mutation happened
// (or CommitDespiteError was called), in which case the batch survives and
// the error is simply returned. Panics inside f are captured into errors.
func (db *DB) Tx(writable bool, f func(tx *Tx) error) error {
	if writable {
		var funcErr error
		var tx *Tx
		err := db.bdb.Batch(func(btx *bbolt.Tx) error {
			if funcErr != nil {
				// don't retry failed transactions
				return funcErr
			}

			tx = db.newTx(btx, true)
			defer tx.Close()
			funcErr = safelyCall(f, tx)
			if funcErr != nil && (!tx.written || tx.commitDespiteErr) {
				return nil
			} else {
				return funcErr
			}
		})
		if err == nil && funcErr != nil {
			err = funcErr
		}
		return err
	} else {
		return db.bdb.View(func(btx *bbolt.Tx) error {
			tx := db.newTx(btx, true)
			defer tx.Close()
			return safelyCall(f, tx)
		})
	}
}

type panicked struct {
	reason interface{}
	stack  string
}

func (p panicked) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", p.reason, p.stack)
}

func safelyCall(fn func(*Tx) error, tx *Tx) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = panicked{p, string(debug.Stack())}
		}
	}()
	return fn(tx)
}

func (db *DB) BeginRead() *Tx {
	btx, err := db.bdb.Begin(false)
	if err != nil {
		panic(fmt.Errorf("failed to start reading: %w", err))
	}
	return db.newTx(btx, false)
}

func (db *DB) Read(f func(tx *Tx)) {
	tx := db.BeginRead()
	defer tx.Close()
	f(tx)
}

func (db *DB) ReadErr(f func(tx *Tx) error) error {
	tx := db.BeginRead()
	defer tx.Close()
	return f(tx)
}

func (db *DB) BeginUpdate() *Tx {
	db.PendingWriterCount.Add(1)
	btx, err := db.bdb.Begin(true)
	db.PendingWriterCount.Add(-1)
	if err != nil {
		panic(fmt.Errorf("db.Begin(true) failed: %w", err))
	}
	return db.newTx(btx, false)
}

func (db *DB) Write(f func(tx *Tx)) {
	tx := db.BeginUpdate()
	defer tx.Close()
	f(tx)
	err := tx.Commit()
	if err != nil {
		panic(fmt.Errorf("commit: %w", err))
	}
}

func (tx *Tx) CommitDespiteError() {
	tx.commitDespiteErr = true
}

func (tx *Tx) markWritten() {
	tx.written = true
}

// addValueBuf keeps a pooled buffer alive until the transaction closes:
// Bolt holds on to value slices passed to Put for the life of the
// transaction, so they can only be recycled afterwards.
func (tx *Tx) addValueBuf(buf []byte) {
	if tx.valueBufs == nil {
		tx.valueBufs = arrayOfBytesPool.Get().([][]byte)
	}
	tx.valueBufs = append(tx.valueBufs, buf)
}

// Close rolls back an uncommitted transaction and releases its buffers.
// Discarding a transaction without Commit is equivalent to abort.
func (tx *Tx) Close() {
	if tx.btx.Writable() {
		tx.db.WriterCount.Add(-1)
	} else {
		tx.db.ReaderCount.Add(-1)
	}
	tx.db.removeTx(tx)
	if !tx.managed {
		// The only error Rollback returns is ErrTxClosed, and it just signals that
		// we've ran Commit (which is the normal flow).
		err := tx.btx.Rollback()
		if err != nil && err != bbolt.ErrTxClosed {
			panic(err) // not expected to happen unless Bolt API changes
		}
	}
	tx.release()
}

func (tx *Tx) release() {
	if tx.valueBufs != nil {
		for i, buf := range tx.valueBufs {
			valueBytesPool.Put(buf[:0])
			tx.valueBufs[i] = nil
		}
		arrayOfBytesPool.Put(tx.valueBufs[:0])
		tx.valueBufs = nil
	}
}

func (tx *Tx) Commit() error {
	size := tx.btx.Size()
	err := tx.btx.Commit()
	if err == nil && tx.written {
		tx.db.lastSize.Store(size)
	}
	return err
}

func (tx *Tx) isVerboseLoggingEnabled() bool {
	return tx.db.verbose
}
