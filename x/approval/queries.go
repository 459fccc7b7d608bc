package approval

import (
	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/x/ledger"
)

// Read only views. They never modify state and see only written
// transitions.

// Transaction returns the transaction with given id.
func (e *Engine) Transaction(id uint64) (*ledger.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Get(e.db, id)
}

// Transactions lists transactions in id order.
func (e *Engine) Transactions(filter ledger.Filter) ([]*ledger.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.List(e.db, filter)
}

// TransactionCount returns how many transactions were ever submitted.
func (e *Engine) TransactionCount() (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Count(e.db)
}

// ConfirmedBy lists transactions the owner has confirmed.
func (e *Engine) ConfirmedBy(owner quorum.Address) ([]*ledger.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.ConfirmedBy(e.db, owner)
}

// IsConfirmedBy reports whether the owner confirmed the transaction.
func (e *Engine) IsConfirmedBy(id uint64, owner quorum.Address) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.IsConfirmedBy(e.db, id, owner)
}

// ConfirmationCount returns the number of distinct owners that confirmed the
// transaction.
func (e *Engine) ConfirmationCount(id uint64) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.ConfirmationCount(e.db, id)
}

// IsExecuted reports whether the transaction was dispatched.
func (e *Engine) IsExecuted(id uint64) (bool, error) {
	tx, err := e.Transaction(id)
	if err != nil {
		return false, err
	}
	return tx.Executed, nil
}

// IsOwner reports whether addr belongs to the owner set.
func (e *Engine) IsOwner(addr quorum.Address) bool {
	return e.registry.IsOwner(addr)
}

// Owners returns the owner set.
func (e *Engine) Owners() []quorum.Address {
	return e.registry.Owners()
}

// Threshold returns the number of confirmations required to execute.
func (e *Engine) Threshold() int {
	return e.registry.Threshold()
}
