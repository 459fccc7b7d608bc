package orm

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/ourkive/quorum/errors"
	"github.com/ourkive/quorum/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter is a minimal model used to exercise buckets.
type counter struct {
	Count int64
	Tags  [][]byte
}

var _ CloneableData = (*counter)(nil)

func (c *counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrModel, "negative count")
	}
	return nil
}

func (c *counter) Copy() CloneableData {
	return &counter{Count: c.Count, Tags: c.Tags}
}

func (c *counter) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, c.Count)
	for _, t := range c.Tags {
		buf.WriteByte(byte(len(t)))
		buf.Write(t)
	}
	return buf.Bytes(), nil
}

func (c *counter) Unmarshal(bz []byte) error {
	if len(bz) < 8 {
		return errors.Wrap(errors.ErrInput, "too short")
	}
	c.Count = int64(binary.BigEndian.Uint64(bz))
	c.Tags = nil
	for rest := bz[8:]; len(rest) > 0; {
		n := int(rest[0])
		c.Tags = append(c.Tags, rest[1:n+1])
		rest = rest[n+1:]
	}
	return nil
}

func newCounterBucket() Bucket {
	return NewBucket("cnts", NewSimpleObj(nil, new(counter))).
		WithMultiKeyIndex("tag", func(obj Object) ([][]byte, error) {
			c, ok := obj.Value().(*counter)
			if !ok {
				return nil, errors.WithType(errors.ErrModel, obj.Value())
			}
			return c.Tags, nil
		})
}

func TestBucketSaveGetDelete(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()

	obj, err := b.Get(db, []byte("a"))
	require.NoError(t, err)
	assert.Nil(t, obj)

	require.NoError(t, b.Save(db, NewSimpleObj([]byte("a"), &counter{Count: 5})))
	obj, err = b.Get(db, []byte("a"))
	require.NoError(t, err)
	require.NotNil(t, obj)
	assert.Equal(t, []byte("a"), obj.Key())
	assert.Equal(t, int64(5), obj.Value().(*counter).Count)

	has, err := b.Has(db, []byte("a"))
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, b.Delete(db, []byte("a")))
	obj, err = b.Get(db, []byte("a"))
	require.NoError(t, err)
	assert.Nil(t, obj)
}

func TestBucketRejectsInvalid(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()

	err := b.Save(db, NewSimpleObj([]byte("a"), &counter{Count: -1}))
	assert.True(t, errors.ErrModel.Is(err))

	err = b.Save(db, NewSimpleObj(nil, &counter{Count: 1}))
	assert.True(t, errors.ErrEmpty.Is(err))
}

func TestBucketIndex(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()

	require.NoError(t, b.Save(db, NewSimpleObj([]byte("a"), &counter{Count: 1, Tags: [][]byte{[]byte("x")}})))
	require.NoError(t, b.Save(db, NewSimpleObj([]byte("b"), &counter{Count: 2, Tags: [][]byte{[]byte("x"), []byte("y")}})))
	// a prefix of another indexed value must not match
	require.NoError(t, b.Save(db, NewSimpleObj([]byte("c"), &counter{Count: 3, Tags: [][]byte{[]byte("xx")}})))

	keys, err := b.IndexKeys(db, "tag", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, keys)

	objs, err := b.GetIndexed(db, "tag", []byte("y"))
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, []byte("b"), objs[0].Key())

	// updating moves the index entries
	require.NoError(t, b.Save(db, NewSimpleObj([]byte("b"), &counter{Count: 2, Tags: [][]byte{[]byte("y")}})))
	keys, err = b.IndexKeys(db, "tag", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a")}, keys)

	require.NoError(t, b.Delete(db, []byte("a")))
	keys, err = b.IndexKeys(db, "tag", []byte("x"))
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = b.IndexKeys(db, "missing", []byte("x"))
	assert.True(t, ErrInvalidIndex.Is(err))
}

func TestBucketScan(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()
	other := NewBucket("cntx", NewSimpleObj(nil, new(counter)))

	for i, k := range []string{"b", "a", "c"} {
		require.NoError(t, b.Save(db, NewSimpleObj([]byte(k), &counter{Count: int64(i)})))
	}
	require.NoError(t, other.Save(db, NewSimpleObj([]byte("z"), &counter{})))

	objs, err := b.Scan(db, false)
	require.NoError(t, err)
	require.Len(t, objs, 3)
	assert.Equal(t, []byte("a"), objs[0].Key())
	assert.Equal(t, []byte("c"), objs[2].Key())

	objs, err = b.Scan(db, true)
	require.NoError(t, err)
	require.Len(t, objs, 3)
	assert.Equal(t, []byte("c"), objs[0].Key())
}

func TestIDGenBucket(t *testing.T) {
	db := store.MemStore()
	b := WithSeqIDGenerator(newCounterBucket(), SeqID)

	first, err := b.Create(db, &counter{Count: 1})
	require.NoError(t, err)
	second, err := b.Create(db, &counter{Count: 2})
	require.NoError(t, err)

	assert.Equal(t, EncodeSequence(0), first.Key())
	assert.Equal(t, EncodeSequence(1), second.Key())

	seq := b.Sequence(SeqID)
	n, err := seq.Count(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestBucketNamePanics(t *testing.T) {
	assert.Panics(t, func() { NewBucket("Bad Name", NewSimpleObj(nil, new(counter))) })
	assert.Panics(t, func() {
		newCounterBucket().WithIndex("tag", func(Object) ([]byte, error) { return nil, nil })
	})
}

func TestPrefixRange(t *testing.T) {
	cases := map[string]struct {
		prefix, end []byte
	}{
		"empty":    {nil, nil},
		"simple":   {[]byte("abc"), []byte("abd")},
		"overflow": {[]byte{1, 255}, []byte{2, 0}},
		"all max":  {[]byte{255, 255}, nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, end := prefixRange(tc.prefix)
			assert.Equal(t, tc.end, end)
		})
	}
}
