package ixdb

import "encoding/binary"

// Keys sort by memcmp in Bolt, so every fixed-width integer is big-endian:
// numeric order and byte order coincide. Strings and byte strings are used
// as-is. Composite keys are built by appending parts onto one buffer, with
// variable-length parts first and fixed-width parts last, so the prefix
// stays recoverable.

func AppendKeyUint64(buf []byte, v uint64) []byte {
	off, buf := grow(buf, 8)
	binary.BigEndian.PutUint64(buf[off:], v)
	return buf
}

func AppendKeyUint32(buf []byte, v uint32) []byte {
	off, buf := grow(buf, 4)
	binary.BigEndian.PutUint32(buf[off:], v)
	return buf
}

func AppendKeyString(buf []byte, v string) []byte {
	n := len(v)
	off, buf := grow(buf, n)
	copy(buf[off:], v)
	return buf
}

func AppendKeyBytes(buf []byte, v []byte) []byte {
	return appendRaw(buf, v)
}

func KeyUint64(v uint64) []byte {
	return AppendKeyUint64(nil, v)
}

func KeyString(v string) []byte {
	return AppendKeyString(nil, v)
}

func decodeKeyUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
