package ledger

import (
	"github.com/ourkive/quorum/errors"
	"github.com/ourkive/quorum/orm"
)

const (
	// BucketName is where we store the transactions
	BucketName = "txs"
	// SequenceName is an auto-increment ID counter for transactions
	SequenceName = orm.SeqID
	// confirmerIndex references transactions by each confirming owner.
	confirmerIndex = "confirmer"
)

// TransactionBucket is a type-safe wrapper around orm.IDGenBucket
type TransactionBucket struct {
	orm.IDGenBucket
}

// NewTransactionBucket initializes a TransactionBucket with default name.
func NewTransactionBucket() TransactionBucket {
	b := orm.NewBucket(BucketName, orm.NewSimpleObj(nil, new(Transaction))).
		WithMultiKeyIndex(confirmerIndex, confirmerIndexer)
	return TransactionBucket{
		IDGenBucket: orm.WithSeqIDGenerator(b, SequenceName),
	}
}

func confirmerIndexer(obj orm.Object) ([][]byte, error) {
	tx, ok := obj.Value().(*Transaction)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	keys := make([][]byte, len(tx.Confirmations))
	for i, c := range tx.Confirmations {
		keys[i] = c
	}
	return keys, nil
}

func asTransaction(obj orm.Object) (*Transaction, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "nil object")
	}
	tx, ok := obj.Value().(*Transaction)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	id, err := orm.DecodeSequence(obj.Key())
	if err != nil {
		return nil, errors.Wrap(err, "transaction key")
	}
	tx.ID = id
	return tx, nil
}
