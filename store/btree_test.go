package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBTreeCacheGetSet does basic sanity checks on our cache
func TestBTreeCacheGetSet(t *testing.T) {
	// devnull is a black hole... just to keep our types proper
	devnull := BTreeCacheable{EmptyKVStore{}}

	// base is the root of our data, we can layer on top and
	// all queries should work
	base := devnull.CacheWrap()

	k, v := []byte("french"), []byte("fry")
	assertGet(t, base, k, nil)
	require.NoError(t, base.Set(k, v))
	assertGet(t, base, k, v)

	// now layer another btree on top and make sure that we get
	// base data
	cache := base.CacheWrap()
	assertGet(t, cache, k, v)

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	require.NoError(t, cache.Set(k2, v2))
	assertGet(t, cache, k2, v2)
	assertGet(t, base, k2, nil)

	// we can write the cache to the base layer...
	require.NoError(t, cache.Write())
	assertGet(t, base, k, v)
	assertGet(t, base, k2, v2)

	// we can discard one
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	require.NoError(t, c2.Set(k3, v3))
	c2.Discard()

	// and commit another
	c3 := base.CacheWrap()
	require.NoError(t, c3.Delete(k))
	require.NoError(t, c3.Write())

	assertGet(t, base, k, nil)
	assertGet(t, base, k2, v2)
	assertGet(t, base, k3, nil)

	// and to test devnull....
	require.NoError(t, base.Write())
	assertGet(t, devnull, k2, nil)
}

func TestBTreeCacheSetCopiesValue(t *testing.T) {
	db := MemStore()
	val := []byte("value")
	require.NoError(t, db.Set([]byte("key"), val))
	val[0] = 'X'
	assertGet(t, db, []byte("key"), []byte("value"))
}

func TestBTreeCacheIterator(t *testing.T) {
	parent := MemStore()
	require.NoError(t, parent.Set([]byte("a"), []byte("1")))
	require.NoError(t, parent.Set([]byte("c"), []byte("3")))
	require.NoError(t, parent.Set([]byte("e"), []byte("5")))

	child := parent.CacheWrap()
	require.NoError(t, child.Set([]byte("b"), []byte("2")))
	require.NoError(t, child.Set([]byte("c"), []byte("33")))
	require.NoError(t, child.Delete([]byte("e")))
	require.NoError(t, child.Set([]byte("f"), []byte("6")))

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		want       []Model
	}{
		"full range": {
			want: []Model{
				pair("a", "1"), pair("b", "2"), pair("c", "33"), pair("f", "6"),
			},
		},
		"full range reverse": {
			reverse: true,
			want: []Model{
				pair("f", "6"), pair("c", "33"), pair("b", "2"), pair("a", "1"),
			},
		},
		"bounded": {
			start: []byte("b"),
			end:   []byte("f"),
			want:  []Model{pair("b", "2"), pair("c", "33")},
		},
		"open start": {
			end:  []byte("c"),
			want: []Model{pair("a", "1"), pair("b", "2")},
		},
		"open end reverse": {
			start:   []byte("c"),
			reverse: true,
			want:    []Model{pair("f", "6"), pair("c", "33")},
		},
		"empty range": {
			start: []byte("x"),
			want:  nil,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var it Iterator
			var err error
			if tc.reverse {
				it, err = child.ReverseIterator(tc.start, tc.end)
			} else {
				it, err = child.Iterator(tc.start, tc.end)
			}
			require.NoError(t, err)
			got := ReadAll(it)
			if len(tc.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}

	// parent is untouched until write
	it, err := parent.Iterator(nil, nil)
	require.NoError(t, err)
	assert.Len(t, ReadAll(it), 3)

	require.NoError(t, child.Write())
	it, err = parent.Iterator(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []Model{
		pair("a", "1"), pair("b", "2"), pair("c", "33"), pair("f", "6"),
	}, ReadAll(it))
}

func TestLogableStore(t *testing.T) {
	kv, ops := LogableStore()
	require.NoError(t, kv.Set([]byte("k"), []byte("v")))
	require.NoError(t, kv.Delete([]byte("x")))

	got := ops.ShowOps()
	require.Len(t, got, 2)
	assert.Equal(t, `set "k"="v"`, got[0].String())
	assert.Equal(t, `del "x"`, got[1].String())
}

func assertGet(t testing.TB, kv ReadOnlyKVStore, key, want []byte) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	has, err := kv.Has(key)
	require.NoError(t, err)
	if want == nil {
		assert.Nil(t, got)
		assert.False(t, has)
		return
	}
	assert.Equal(t, want, got)
	assert.True(t, has)
}

func pair(k, v string) Model {
	return Model{Key: []byte(k), Value: []byte(v)}
}
