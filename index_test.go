package ixdb

import "testing"

func TestDiffIndexRows(t *testing.T) {
	row := func(idx *Index, key string) IndexRow {
		return IndexRow{Index: idx, KeyRaw: []byte(key), ikLen: len(key)}
	}
	o := func(name string, old, new indexRows, expRemoved, expAdded []string) {
		t.Run(name, func(t *testing.T) {
			var removed, added []string
			diffIndexRows(old, new,
				func(r IndexRow) { removed = append(removed, string(r.KeyRaw)) },
				func(r IndexRow) { added = append(added, string(r.KeyRaw)) })
			deepEqual(t, removed, expRemoved)
			deepEqual(t, added, expAdded)
		})
	}

	o("identical",
		indexRows{row(userByName, "a"), row(userByCreated, "x")},
		indexRows{row(userByName, "a"), row(userByCreated, "x")},
		nil, nil)

	o("key moved",
		indexRows{row(userByName, "alice")},
		indexRows{row(userByName, "zoya")},
		[]string{"alice"}, []string{"zoya"})

	o("all removed",
		indexRows{row(userByName, "a"), row(userByName, "b")},
		nil,
		[]string{"a", "b"}, nil)

	o("all added",
		nil,
		indexRows{row(userByName, "a"), row(userByName, "b")},
		nil, []string{"a", "b"})

	o("multi key overlap",
		indexRows{row(userByName, "a"), row(userByName, "b"), row(userByName, "c")},
		indexRows{row(userByName, "b"), row(userByName, "c"), row(userByName, "d")},
		[]string{"a"}, []string{"d"})

	o("across indices",
		indexRows{row(userByName, "same"), row(userByCreated, "k1")},
		indexRows{row(userByName, "same"), row(userByCreated, "k2")},
		[]string{"k1"}, []string{"k2"})
}

func TestIndexEntryEncoding(t *testing.T) {
	// unique: the id lives in the entry value
	r := IndexRow{Index: userByName, KeyRaw: []byte("alice"), ikLen: 5}
	deepEqual(t, entryKey(r, 4), []byte("alice"))
	deepEqual(t, userByName.entryID([]byte("alice"), KeyUint64(4)), uint64(4))
	deepEqual(t, userByName.entryIndexKey([]byte("alice")), []byte("alice"))

	// duplicate: the id is the fixed-width tail of the entry key
	r = IndexRow{Index: userByCreated, KeyRaw: KeyUint64(1001), ikLen: 8}
	ek := entryKey(r, 3)
	deepEqual(t, ek, append(KeyUint64(1001), KeyUint64(3)...))
	deepEqual(t, userByCreated.entryID(ek, nil), uint64(3))
	deepEqual(t, userByCreated.entryIndexKey(ek), KeyUint64(1001))
}
