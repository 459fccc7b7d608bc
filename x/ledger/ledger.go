package ledger

import (
	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/errors"
	"github.com/ourkive/quorum/orm"
)

// Filter selects transactions by execution state when listing.
type Filter int

const (
	// All transactions
	All Filter = iota
	// Pending transactions only, not executed yet
	Pending
	// Executed transactions only
	Executed
)

func (f Filter) match(tx *Transaction) bool {
	switch f {
	case Pending:
		return !tx.Executed
	case Executed:
		return tx.Executed
	default:
		return true
	}
}

// Ledger stores transactions and their confirmation state. It holds no state
// of its own; every call operates on the given store.
type Ledger struct {
	bucket TransactionBucket
}

// NewLedger returns a ledger using the default transaction bucket.
func NewLedger() *Ledger {
	return &Ledger{bucket: NewTransactionBucket()}
}

// Insert stores a new pending transaction with no confirmations and returns
// its id. Ids start at 0 and grow by one with every insert.
func (l *Ledger) Insert(db quorum.KVStore, submitter, target quorum.Address, value uint64, data []byte) (uint64, error) {
	tx := &Transaction{
		Submitter: submitter.Clone(),
		Target:    target.Clone(),
		Value:     value,
		Data:      append([]byte(nil), data...),
	}
	obj, err := l.bucket.Create(db, tx)
	if err != nil {
		return 0, errors.Wrap(err, "create transaction")
	}
	tx, err = asTransaction(obj)
	if err != nil {
		return 0, err
	}
	return tx.ID, nil
}

// Get returns the transaction with given id, or ErrNotFound.
func (l *Ledger) Get(db quorum.ReadOnlyKVStore, id uint64) (*Transaction, error) {
	obj, err := l.bucket.Get(db, orm.EncodeSequence(id))
	if err != nil {
		return nil, errors.Wrapf(err, "load transaction %d", id)
	}
	if obj == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "transaction %d", id)
	}
	return asTransaction(obj)
}

// AddConfirmation records the owner approval of a pending transaction.
func (l *Ledger) AddConfirmation(db quorum.KVStore, id uint64, owner quorum.Address) error {
	tx, err := l.Get(db, id)
	if err != nil {
		return err
	}
	if err := tx.addConfirmation(owner); err != nil {
		return err
	}
	return l.save(db, tx)
}

// MarkExecuted flips the transaction into its terminal, executed state. It
// must only be called once the call was dispatched successfully.
func (l *Ledger) MarkExecuted(db quorum.KVStore, id uint64) error {
	tx, err := l.Get(db, id)
	if err != nil {
		return err
	}
	if tx.Executed {
		return errors.Wrapf(errors.ErrAlreadyExecuted, "transaction %d", id)
	}
	tx.Executed = true
	return l.save(db, tx)
}

// ConfirmationCount returns the number of owners that confirmed the
// transaction.
func (l *Ledger) ConfirmationCount(db quorum.ReadOnlyKVStore, id uint64) (int, error) {
	tx, err := l.Get(db, id)
	if err != nil {
		return 0, err
	}
	return tx.ConfirmationCount(), nil
}

// IsConfirmedBy returns true if the owner confirmed the transaction.
func (l *Ledger) IsConfirmedBy(db quorum.ReadOnlyKVStore, id uint64, owner quorum.Address) (bool, error) {
	tx, err := l.Get(db, id)
	if err != nil {
		return false, err
	}
	return tx.IsConfirmedBy(owner), nil
}

// Count returns the number of transactions ever submitted.
func (l *Ledger) Count(db quorum.ReadOnlyKVStore) (uint64, error) {
	seq := l.bucket.Sequence(SequenceName)
	return seq.Count(db)
}

// List returns all transactions matching the filter, ordered by id.
func (l *Ledger) List(db quorum.ReadOnlyKVStore, filter Filter) ([]*Transaction, error) {
	objs, err := l.bucket.Scan(db, false)
	if err != nil {
		return nil, errors.Wrap(err, "scan")
	}
	return collect(objs, filter)
}

// ConfirmedBy returns all transactions confirmed by given owner, ordered by
// id.
func (l *Ledger) ConfirmedBy(db quorum.ReadOnlyKVStore, owner quorum.Address) ([]*Transaction, error) {
	objs, err := l.bucket.GetIndexed(db, confirmerIndex, owner)
	if err != nil {
		return nil, errors.Wrap(err, "confirmer index")
	}
	return collect(objs, All)
}

func (l *Ledger) save(db quorum.KVStore, tx *Transaction) error {
	obj := orm.NewSimpleObj(orm.EncodeSequence(tx.ID), tx)
	if err := l.bucket.Save(db, obj); err != nil {
		return errors.Wrapf(err, "save transaction %d", tx.ID)
	}
	return nil
}

func collect(objs []orm.Object, filter Filter) ([]*Transaction, error) {
	res := make([]*Transaction, 0, len(objs))
	for _, obj := range objs {
		tx, err := asTransaction(obj)
		if err != nil {
			return nil, err
		}
		if filter.match(tx) {
			res = append(res, tx)
		}
	}
	return res, nil
}
