package ledger

import (
	"bytes"
	"sort"

	"github.com/gogo/protobuf/proto"
	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/errors"
	"github.com/ourkive/quorum/orm"
)

// Transaction is one proposed privileged action.
type Transaction struct {
	// ID is the primary key, it is not part of the serialized value.
	ID        uint64         `json:"id"`
	Submitter quorum.Address `json:"submitter"`
	Target    quorum.Address `json:"target"`
	Value     uint64         `json:"value"`
	Data      []byte         `json:"data"`
	Executed  bool           `json:"executed"`
	// Confirmations is kept sorted, without duplicates.
	Confirmations []quorum.Address `json:"confirmations"`
}

var _ orm.CloneableData = (*Transaction)(nil)

// Validate checks the addresses and the confirmation set ordering.
func (t *Transaction) Validate() error {
	var errs error
	if err := t.Submitter.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "submitter"))
	}
	if err := t.Target.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "target"))
	}
	for i, c := range t.Confirmations {
		if err := c.Validate(); err != nil {
			errs = errors.Append(errs, errors.Wrapf(err, "confirmation #%d", i))
			continue
		}
		if i > 0 && bytes.Compare(t.Confirmations[i-1], c) >= 0 {
			errs = errors.Append(errs, errors.Wrapf(errors.ErrModel, "confirmation #%d is not sorted or duplicated", i))
		}
	}
	return errs
}

// Copy returns a deep copy of the transaction.
func (t *Transaction) Copy() orm.CloneableData {
	confs := make([]quorum.Address, len(t.Confirmations))
	for i, c := range t.Confirmations {
		confs[i] = c.Clone()
	}
	return &Transaction{
		ID:            t.ID,
		Submitter:     t.Submitter.Clone(),
		Target:        t.Target.Clone(),
		Value:         t.Value,
		Data:          append([]byte(nil), t.Data...),
		Executed:      t.Executed,
		Confirmations: confs,
	}
}

// Marshal serializes the transaction using protobuf.
func (t *Transaction) Marshal() ([]byte, error) {
	rec := transactionRecord{
		Submitter:     t.Submitter,
		Target:        t.Target,
		Value:         t.Value,
		Data:          t.Data,
		Executed:      t.Executed,
		Confirmations: make([][]byte, len(t.Confirmations)),
	}
	for i, c := range t.Confirmations {
		rec.Confirmations[i] = c
	}
	return proto.Marshal(&rec)
}

// Unmarshal loads the transaction from its protobuf representation.
func (t *Transaction) Unmarshal(raw []byte) error {
	var rec transactionRecord
	if err := proto.Unmarshal(raw, &rec); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	*t = Transaction{
		ID:        t.ID,
		Submitter: rec.Submitter,
		Target:    rec.Target,
		Value:     rec.Value,
		Data:      rec.Data,
		Executed:  rec.Executed,
	}
	if len(rec.Confirmations) > 0 {
		t.Confirmations = make([]quorum.Address, len(rec.Confirmations))
		for i, c := range rec.Confirmations {
			t.Confirmations[i] = c
		}
	}
	return nil
}

// IsConfirmedBy returns true if the owner confirmed this transaction.
func (t *Transaction) IsConfirmedBy(owner quorum.Address) bool {
	_, found := t.confirmationIndex(owner)
	return found
}

// ConfirmationCount returns the number of distinct confirmations.
func (t *Transaction) ConfirmationCount() int {
	return len(t.Confirmations)
}

// addConfirmation inserts the owner in the sorted confirmation set.
func (t *Transaction) addConfirmation(owner quorum.Address) error {
	if t.Executed {
		return errors.Wrapf(errors.ErrAlreadyExecuted, "transaction %d", t.ID)
	}
	i, found := t.confirmationIndex(owner)
	if found {
		return errors.Wrapf(errors.ErrAlreadyConfirmed, "transaction %d by %s", t.ID, owner)
	}
	t.Confirmations = append(t.Confirmations, nil)
	copy(t.Confirmations[i+1:], t.Confirmations[i:])
	t.Confirmations[i] = owner.Clone()
	return nil
}

func (t *Transaction) confirmationIndex(owner quorum.Address) (int, bool) {
	i := sort.Search(len(t.Confirmations), func(i int) bool {
		return bytes.Compare(t.Confirmations[i], owner) >= 0
	})
	return i, i < len(t.Confirmations) && t.Confirmations[i].Equals(owner)
}
