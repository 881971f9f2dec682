package ixdb

import (
	"bytes"
	"context"
	"log/slog"

	"go.etcd.io/bbolt"
)

const (
	debugLogRawScans = false
)

// rawRange describes an ordered walk over a bucket. Bounds are inclusive:
// forward scans start at the first key ≥ lower, reverse scans at the last
// key ≤ upper. With upperPrefixed set, entries that extend upper with a
// suffix still count as equal to it; that is the landing rule for duplicate
// entries, whose bucket keys append a subkey and id to the logical key.
type rawRange struct {
	prefix        []byte
	lower         []byte
	upper         []byte
	upperPrefixed bool
	reverse       bool
}

func (r *rawRange) start(bcur *bbolt.Cursor, logger *slog.Logger) ([]byte, []byte) {
	var k, v []byte
	if r.reverse {
		upper, prefixed := r.upper, r.upperPrefixed
		if upper == nil && r.prefix != nil {
			upper, prefixed = r.prefix, true
		}
		if upper == nil {
			k, v = bcur.Last()
			if debugLogRawScans {
				logger.LogAttrs(context.Background(), slog.LevelDebug, "LAST", hexAttr("key", k), hexAttr("val", v))
			}
		} else if prefixed {
			k, v = boltSeekLastPrefix(bcur, upper)
			if debugLogRawScans {
				logger.LogAttrs(context.Background(), slog.LevelDebug, "SEEK_LAST_PREFIX", hexAttr("upper", upper), hexAttr("key", k), hexAttr("val", v))
			}
		} else {
			k, v = boltSeekLE(bcur, upper)
			if debugLogRawScans {
				logger.LogAttrs(context.Background(), slog.LevelDebug, "SEEK_LE", hexAttr("upper", upper), hexAttr("key", k), hexAttr("val", v))
			}
		}
	} else {
		lower := r.lower
		if lower == nil {
			lower = r.prefix
		}
		if lower == nil {
			k, v = bcur.First()
			if debugLogRawScans {
				logger.LogAttrs(context.Background(), slog.LevelDebug, "FIRST", hexAttr("key", k), hexAttr("val", v))
			}
		} else {
			k, v = bcur.Seek(lower)
			if debugLogRawScans {
				logger.LogAttrs(context.Background(), slog.LevelDebug, "SEEK", hexAttr("lower", lower), hexAttr("key", k), hexAttr("val", v))
			}
		}
	}
	if k != nil && r.match(k, logger) {
		return k, v
	}
	return nil, nil
}

func (r *rawRange) next(bcur *bbolt.Cursor, logger *slog.Logger) ([]byte, []byte) {
	k, v := boltAdvance(bcur, r.reverse)
	if debugLogRawScans {
		logger.LogAttrs(context.Background(), slog.LevelDebug, "ADVANCE", hexAttr("key", k), hexAttr("val", v))
	}
	if k != nil && r.match(k, logger) {
		return k, v
	}
	return nil, nil
}

func (r *rawRange) match(k []byte, logger *slog.Logger) bool {
	if r.prefix != nil && !bytes.HasPrefix(k, r.prefix) {
		if debugLogRawScans {
			logger.LogAttrs(context.Background(), slog.LevelDebug, "BAIL on prefix", hexAttr("prefix", r.prefix), hexAttr("key", k))
		}
		return false
	}
	return true
}

func (r *rawRange) newCursor(bcur *bbolt.Cursor, logger *slog.Logger) *rawRangeCursor {
	return &rawRangeCursor{rang: *r, bcur: bcur, logger: logger}
}

type rawRangeCursor struct {
	rang   rawRange
	bcur   *bbolt.Cursor
	logger *slog.Logger
	k, v   []byte
	init   bool
}

func (c *rawRangeCursor) Next() bool {
	if c.init {
		c.k, c.v = c.rang.next(c.bcur, c.logger)
	} else {
		c.init = true
		c.k, c.v = c.rang.start(c.bcur, c.logger)
	}
	return c.k != nil
}

func (c *rawRangeCursor) Key() []byte   { return c.k }
func (c *rawRangeCursor) Value() []byte { return c.v }
