package ixdb

import (
	"bytes"
	"sort"
	"testing"
)

func TestKeyUint64ByteOrder(t *testing.T) {
	deepEqual(t, KeyUint64(1001), []byte{0, 0, 0, 0, 0, 0, 0x03, 0xE9})

	values := []uint64{0, 1, 255, 256, 1000, 1001, 65535, 65536, 1 << 32, 1<<63 + 5}
	for i := 1; i < len(values); i++ {
		a, b := KeyUint64(values[i-1]), KeyUint64(values[i])
		if bytes.Compare(a, b) >= 0 {
			t.Errorf("** %d (%x) does not sort before %d (%x)", values[i-1], a, values[i], b)
		}
	}
}

func TestCompositeKeyOrder(t *testing.T) {
	mk := func(s string, v uint64) []byte {
		return AppendKeyUint64(KeyString(s), v)
	}
	keys := [][]byte{
		mk("bbbb", 1001),
		mk("aaaa", 9999),
		mk("bbbb", 0),
		mk("bbbb", 997),
		mk("cccc", 1),
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
	deepEqual(t, keys, [][]byte{
		mk("aaaa", 9999),
		mk("bbbb", 0),
		mk("bbbb", 997),
		mk("bbbb", 1001),
		mk("cccc", 1),
	})
}

func TestCompositeKeySuffixRecoverable(t *testing.T) {
	k := AppendKeyUint64(KeyString("carrots"), 1500)
	deepEqual(t, string(k[:len(k)-8]), "carrots")
	deepEqual(t, decodeKeyUint64(k[len(k)-8:]), uint64(1500))
}
