package orm

import (
	"encoding/binary"

	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/errors"
)

// Sequence maintains a counter, and generates a
// series of keys. Each key is greater than the last,
// both NextInt() as well as bytes.Compare() on NextVal().
//
// The first value handed out is 0.
type Sequence struct {
	id []byte
}

// NewSequence returns a sequence counter. Sequence is using following pattern
// to construct a key:
//    _s.<bucket>:<name>
func NewSequence(bucket, name string) Sequence {
	id := "_s." + bucket + ":" + name
	return Sequence{
		id: []byte(id),
	}
}

// NextVal reserves the next value and returns it as 8 bytes.
func (s *Sequence) NextVal(db quorum.KVStore) ([]byte, error) {
	val, err := s.NextInt(db)
	if err != nil {
		return nil, err
	}
	return EncodeSequence(val), nil
}

// NextInt reserves the next value and returns it.
func (s *Sequence) NextInt(db quorum.KVStore) (uint64, error) {
	val, err := s.Count(db)
	if err != nil {
		return 0, err
	}
	if err := db.Set(s.id, EncodeSequence(val+1)); err != nil {
		return 0, errors.Wrap(err, "store sequence")
	}
	return val, nil
}

// Count returns how many values this sequence has handed out. This method
// does not modify the sequence state.
func (s *Sequence) Count(db quorum.ReadOnlyKVStore) (uint64, error) {
	raw, err := db.Get(s.id)
	if err != nil {
		return 0, errors.Wrap(err, "load sequence")
	}
	return DecodeSequence(raw)
}

// DecodeSequence reads a sequence value. Missing data decodes to 0.
func DecodeSequence(bz []byte) (uint64, error) {
	if bz == nil {
		return 0, nil
	}
	if len(bz) != 8 {
		return 0, errors.Wrapf(errors.ErrInput, "sequence must be 8 bytes, got %d", len(bz))
	}
	return binary.BigEndian.Uint64(bz), nil
}

// EncodeSequence serializes a sequence value so that the byte order
// matches the numeric order.
func EncodeSequence(val uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, val)
	return bz
}
