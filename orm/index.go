package orm

import (
	"bytes"
	"math"

	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/errors"
	"github.com/ourkive/quorum/store"
)

// Index maintains a secondary lookup for entities of a bucket.
type Index interface {
	// Name returns the name of this index.
	Name() string

	// Update updates the index. It should be called when any of the bucket
	// entities has changed in the store.
	//
	// prev == nil means insert
	// save == nil means delete
	// both == nil is error
	// if both != nil and prev.Key() != save.Key() this is an error
	Update(db quorum.KVStore, prev Object, save Object) error

	// Keys returns all entity keys that were indexed under given value,
	// in ascending order.
	Keys(db quorum.ReadOnlyKVStore, value []byte) ([][]byte, error)
}

// Indexer calculates the secondary index key for a given object
type Indexer func(Object) ([]byte, error)

// MultiKeyIndexer calculates the secondary index keys for a given object
type MultiKeyIndexer func(Object) ([][]byte, error)

func asMultiKeyIndexer(indexer Indexer) MultiKeyIndexer {
	return func(obj Object) ([][]byte, error) {
		key, err := indexer(obj)
		switch {
		case err != nil:
			return nil, err
		case key == nil:
			return nil, nil
		}
		return [][]byte{key}, nil
	}
}

const nativeIdxPrefix = "_x."

// NewNativeIndex returns an index implementation that is using a database
// native storage and query in order to maintain and provide access to an
// index.
func NewNativeIndex(name string, indexer MultiKeyIndexer) Index {
	return &nativeIndex{
		name:    name,
		indexer: indexer,
	}
}

// nativeIndex stores one empty-valued database entry per indexed value and
// entity, so lookups are a single range scan.
type nativeIndex struct {
	name    string
	indexer MultiKeyIndexer
}

func (ix *nativeIndex) Name() string {
	return ix.name
}

func (ix *nativeIndex) Update(db quorum.KVStore, prev Object, next Object) error {
	if next == nil && prev == nil {
		return errors.Wrap(errors.ErrInput, "update requires at least one non-nil object")
	}
	if next != nil && prev != nil {
		if !bytes.Equal(next.Key(), prev.Key()) {
			return errors.Wrap(errors.ErrState, "previous key is not the same as the new one")
		}
	}

	// Delete.
	if prev != nil {
		values, err := ix.indexer(prev)
		if err != nil {
			return errors.Wrap(err, "indexer")
		}
		for _, v := range values {
			idxKey, err := packNativeIdxKey([][]byte{[]byte(ix.name), v, prev.Key()})
			if err != nil {
				return errors.Wrap(err, "build index key")
			}
			if err := db.Delete(idxKey); err != nil {
				return errors.Wrap(err, "db delete")
			}
		}
	}

	// Insert.
	if next != nil {
		values, err := ix.indexer(next)
		if err != nil {
			return errors.Wrap(err, "indexer")
		}
		for _, v := range values {
			idxKey, err := packNativeIdxKey([][]byte{[]byte(ix.name), v, next.Key()})
			if err != nil {
				return errors.Wrap(err, "build index key")
			}
			if err := db.Set(idxKey, []byte{}); err != nil {
				return errors.Wrap(err, "db set")
			}
		}
	}

	return nil
}

func (ix *nativeIndex) Keys(db quorum.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	lookupKey, err := packNativeIdxKey([][]byte{[]byte(ix.name), value})
	if err != nil {
		return nil, errors.Wrap(err, "build index key")
	}

	// Index key is in format:
	//    <prefix>#<index name>#<value>#<entity id>
	// where # is the length of the following chunk. All entries for a value
	// are between <prefix>#<index name>#<value> and the same key followed
	// by 255, a length no chunk can have.
	start := lookupKey
	end := make([]byte, len(lookupKey)+1)
	copy(end, lookupKey)
	end[len(end)-1] = math.MaxUint8

	it, err := db.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(err, "iterator")
	}

	var keys [][]byte
	for _, m := range store.ReadAll(it) {
		chunks, err := unpackNativeIdxKey(m.Key)
		if err != nil {
			return nil, errors.Wrap(err, "unpack native index key")
		}
		keys = append(keys, chunks[len(chunks)-1])
	}
	return keys, nil
}

// packNativeIdxKey serialize a native index key from a set of values to a
// single key. This process can be reversed using unpackNativeIdxKey function.
//
// Each chunk is prefixed with its length, encoded as a uint8 value. If a key
// is created from 3 chunks, "aaa", "" and "c", that key representation is:
//
//   _x.<3>aaa<0><1>c
func packNativeIdxKey(chunks [][]byte) ([]byte, error) {
	var size int
	for _, b := range chunks {
		size += len(b) + 1
	}
	res := make([]byte, 0, size+len(nativeIdxPrefix))
	res = append(res, nativeIdxPrefix...)

	for _, b := range chunks {
		// MaxUint8 is reserved for the search purpose.
		if len(b) > math.MaxUint8-1 {
			return nil, errors.Wrapf(errors.ErrInput, "no chunk can be bigger than %d bytes", math.MaxUint8-1)
		}
		res = append(res, uint8(len(b)))
		res = append(res, b...)
	}
	return res, nil
}

// unpackNativeIdxKey decodes native index key and extracts all chunks that
// compose that key.
func unpackNativeIdxKey(b []byte) ([][]byte, error) {
	if !bytes.HasPrefix(b, []byte(nativeIdxPrefix)) {
		return nil, errors.Wrap(errors.ErrInput, "not a native index key")
	}
	b = b[len(nativeIdxPrefix):]
	res := make([][]byte, 0, 3)
	for len(b) > 0 {
		size := int(b[0])
		if len(b) < size+1 {
			return nil, errors.Wrap(errors.ErrInput, "malformed native index key")
		}
		res = append(res, b[1:size+1])
		b = b[size+1:]
	}
	if len(res) == 0 {
		return nil, errors.Wrap(errors.ErrInput, "empty native index key")
	}
	return res, nil
}
