package approval

import (
	"context"
	"sync"

	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/errors"
	"github.com/ourkive/quorum/x/dispatch"
	"github.com/ourkive/quorum/x/ledger"
	"github.com/ourkive/quorum/x/owners"
	"github.com/tendermint/tendermint/libs/log"
)

// Committer persists the state written so far as a new version. Rollback
// drops everything written since the last successful Commit.
type Committer interface {
	Commit() (quorum.CommitID, error)
	Rollback()
}

// Option configures an Engine.
type Option func(*Engine)

// WithCommitter makes the engine commit a new store version after every
// applied transition.
func WithCommitter(c Committer) Option {
	return func(e *Engine) {
		e.committer = c
	}
}

// WithListener registers a listener notified of every applied transition.
func WithListener(l Listener) Option {
	return func(e *Engine) {
		e.listeners = append(e.listeners, l)
	}
}

// Engine orchestrates submit, confirm and execute. It is safe for concurrent
// use; all store access is serialized and a transaction is dispatched at most
// once.
type Engine struct {
	mu sync.Mutex
	// executing holds ids claimed by an Execute call that is dispatching.
	executing map[uint64]struct{}

	db         quorum.CacheableKVStore
	registry   *owners.Registry
	ledger     *ledger.Ledger
	dispatcher dispatch.Dispatcher
	committer  Committer
	listeners  []Listener
}

// NewEngine returns an engine operating on db. Only the engine may modify the
// ledger state stored there.
func NewEngine(db quorum.CacheableKVStore, registry *owners.Registry, l *ledger.Ledger, d dispatch.Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		executing:  make(map[uint64]struct{}),
		db:         db,
		registry:   registry,
		ledger:     l,
		dispatcher: d,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit records a new pending transaction and returns its id. The submitter
// is not counted as a confirmation.
func (e *Engine) Submit(ctx context.Context, caller, target quorum.Address, value uint64, data []byte) (uint64, error) {
	if err := e.authorize(caller); err != nil {
		return 0, err
	}
	if err := target.Validate(); err != nil {
		return 0, errors.Wrap(err, "target")
	}

	var id uint64
	err := e.update(func(db quorum.KVStore) error {
		var err error
		id, err = e.ledger.Insert(db, caller, target, value, data)
		return err
	})
	if err != nil {
		return 0, err
	}

	logger(ctx).Info("transaction submitted", "tx", id, "owner", caller, "target", target, "value", value)
	e.emit(newEvent(EventSubmission, id, caller))
	return id, nil
}

// Confirm adds the caller approval to a pending transaction. It never
// triggers execution.
func (e *Engine) Confirm(ctx context.Context, caller quorum.Address, id uint64) error {
	if err := e.authorize(caller); err != nil {
		return err
	}

	err := e.update(func(db quorum.KVStore) error {
		if _, ok := e.executing[id]; ok {
			return errors.Wrapf(errors.ErrAlreadyExecuted, "transaction %d is being executed", id)
		}
		return e.ledger.AddConfirmation(db, id, caller)
	})
	if err != nil {
		return err
	}

	logger(ctx).Info("transaction confirmed", "tx", id, "owner", caller)
	e.emit(newEvent(EventConfirmation, id, caller))
	return nil
}

// Execute dispatches the transaction once it collected enough confirmations
// and marks it executed. When the dispatch fails the transaction stays
// pending with its confirmations and can be executed again.
func (e *Engine) Execute(ctx context.Context, caller quorum.Address, id uint64) error {
	if err := e.authorize(caller); err != nil {
		return err
	}

	tx, err := e.claim(id)
	if err != nil {
		return err
	}

	call := dispatch.Call{
		TxID:   tx.ID,
		Target: tx.Target,
		Value:  tx.Value,
		Data:   tx.Data,
	}
	if err := dispatch.Safe(ctx, e.dispatcher, call); err != nil {
		e.release(id)
		logger(ctx).Error("dispatch failed", "tx", id, "owner", caller, "err", err)
		e.emit(newEvent(EventExecutionFailed, id, caller))
		return errors.Wrapf(errors.ErrDispatchFailed, "transaction %d: %s", id, err)
	}

	err = e.update(func(db quorum.KVStore) error {
		return e.ledger.MarkExecuted(db, id)
	})
	if err != nil {
		// The call went out. Keep the claim so it is never dispatched
		// again by this engine.
		logger(ctx).Error("cannot mark executed", "tx", id, "err", err)
		return errors.Wrapf(err, "transaction %d was dispatched", id)
	}
	e.release(id)

	logger(ctx).Info("transaction executed", "tx", id, "owner", caller)
	e.emit(newEvent(EventExecution, id, caller))
	return nil
}

// claim checks the transaction can be executed and reserves it for the
// caller.
func (e *Engine) claim(id uint64) (*ledger.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.ledger.Get(e.db, id)
	if err != nil {
		return nil, err
	}
	if _, ok := e.executing[id]; ok || tx.Executed {
		return nil, errors.Wrapf(errors.ErrAlreadyExecuted, "transaction %d", id)
	}
	if n, want := tx.ConfirmationCount(), e.registry.Threshold(); n < want {
		return nil, errors.Wrapf(errors.ErrQuorumNotMet, "transaction %d has %d of %d confirmations", id, n, want)
	}
	e.executing[id] = struct{}{}
	return tx, nil
}

func (e *Engine) release(id uint64) {
	e.mu.Lock()
	delete(e.executing, id)
	e.mu.Unlock()
}

// update runs fn on a cache wrap of the store and writes the result only if
// fn succeeded.
func (e *Engine) update(fn func(db quorum.KVStore) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cache := e.db.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		// Part of the batch may have reached the store.
		e.rollback()
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if e.committer != nil {
		if _, err := e.committer.Commit(); err != nil {
			e.rollback()
			return errors.Wrap(err, "commit")
		}
	}
	return nil
}

func (e *Engine) rollback() {
	if e.committer != nil {
		e.committer.Rollback()
	}
}

func (e *Engine) authorize(caller quorum.Address) error {
	if !e.registry.IsOwner(caller) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not an owner", caller)
	}
	return nil
}

func (e *Engine) emit(ev Event) {
	for _, l := range e.listeners {
		l(ev)
	}
}

func logger(ctx context.Context) log.Logger {
	return quorum.GetLogger(ctx).With("module", "approval")
}
