package approval

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/errors"
	"github.com/ourkive/quorum/quorumtest"
	"github.com/ourkive/quorum/store"
	"github.com/ourkive/quorum/store/iavl"
	"github.com/ourkive/quorum/x/dispatch"
	"github.com/ourkive/quorum/x/ledger"
	"github.com/ourkive/quorum/x/owners"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t testing.TB, n int, threshold uint32, d dispatch.Dispatcher, opts ...Option) (*Engine, []quorum.Address) {
	t.Helper()
	addrs := quorumtest.NewAddresses(n)
	reg, err := owners.NewRegistry(addrs, threshold)
	require.NoError(t, err)
	return NewEngine(store.MemStore(), reg, ledger.NewLedger(), d, opts...), addrs
}

func TestApprovalFlow(t *testing.T) {
	ctx := context.Background()
	var rec dispatch.Recorder
	e, o := newEngine(t, 3, 2, &rec)
	target := quorumtest.NewAddress()

	id, err := e.Submit(ctx, o[0], target, 7, []byte("transfer"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	require.NoError(t, e.Confirm(ctx, o[0], id))
	err = e.Execute(ctx, o[0], id)
	assert.True(t, errors.ErrQuorumNotMet.Is(err), "%+v", err)
	assert.Equal(t, 0, rec.CallCount())

	require.NoError(t, e.Confirm(ctx, o[1], id))
	require.NoError(t, e.Execute(ctx, o[2], id))

	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, dispatch.Call{TxID: id, Target: target, Value: 7, Data: []byte("transfer")}, calls[0])

	executed, err := e.IsExecuted(id)
	require.NoError(t, err)
	assert.True(t, executed)

	err = e.Execute(ctx, o[0], id)
	assert.True(t, errors.ErrAlreadyExecuted.Is(err))
	err = e.Confirm(ctx, o[2], id)
	assert.True(t, errors.ErrAlreadyExecuted.Is(err))
	assert.Equal(t, 1, rec.CallCount())

	n, err := e.ConfirmationCount(id)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNonOwnerIsRejected(t *testing.T) {
	ctx := context.Background()
	var rec dispatch.Recorder
	e, o := newEngine(t, 2, 1, &rec)
	outsider := quorumtest.NewAddress()

	id, err := e.Submit(ctx, o[0], quorumtest.NewAddress(), 1, nil)
	require.NoError(t, err)
	require.NoError(t, e.Confirm(ctx, o[0], id))

	cases := map[string]func() error{
		"submit": func() error {
			_, err := e.Submit(ctx, outsider, quorumtest.NewAddress(), 1, nil)
			return err
		},
		"confirm":    func() error { return e.Confirm(ctx, outsider, id) },
		"execute":    func() error { return e.Execute(ctx, outsider, id) },
		"nil caller": func() error { return e.Confirm(ctx, nil, id) },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			err := fn()
			assert.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)
		})
	}

	count, err := e.TransactionCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
	confirmed, err := e.IsConfirmedBy(id, outsider)
	require.NoError(t, err)
	assert.False(t, confirmed)
	assert.Equal(t, 0, rec.CallCount())
}

func TestSubmitInvalidTarget(t *testing.T) {
	e, o := newEngine(t, 1, 1, &dispatch.Recorder{})

	_, err := e.Submit(context.Background(), o[0], nil, 1, nil)
	assert.True(t, errors.ErrEmpty.Is(err))
	_, err = e.Submit(context.Background(), o[0], quorum.Address("short"), 1, nil)
	assert.True(t, errors.ErrInput.Is(err))

	count, err := e.TransactionCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSubmitterIsNotConfirmation(t *testing.T) {
	e, o := newEngine(t, 2, 1, &dispatch.Recorder{})

	id, err := e.Submit(context.Background(), o[0], quorumtest.NewAddress(), 0, nil)
	require.NoError(t, err)

	ok, err := e.IsConfirmedBy(id, o[0])
	require.NoError(t, err)
	assert.False(t, ok)
	err = e.Execute(context.Background(), o[0], id)
	assert.True(t, errors.ErrQuorumNotMet.Is(err))
}

func TestConfirmErrors(t *testing.T) {
	ctx := context.Background()
	e, o := newEngine(t, 3, 2, &dispatch.Recorder{})
	id, err := e.Submit(ctx, o[0], quorumtest.NewAddress(), 0, nil)
	require.NoError(t, err)
	require.NoError(t, e.Confirm(ctx, o[1], id))

	err = e.Confirm(ctx, o[1], id)
	assert.True(t, errors.ErrAlreadyConfirmed.Is(err))
	n, err := e.ConfirmationCount(id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = e.Confirm(ctx, o[1], 42)
	assert.True(t, errors.ErrNotFound.Is(err))
	err = e.Execute(ctx, o[1], 42)
	assert.True(t, errors.ErrNotFound.Is(err))
	_, err = e.IsExecuted(42)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestExecuteRequiresThreshold(t *testing.T) {
	const ownerCount = 3
	for threshold := uint32(1); threshold <= ownerCount; threshold++ {
		for confirmations := 0; confirmations <= ownerCount; confirmations++ {
			name := fmt.Sprintf("threshold %d with %d confirmations", threshold, confirmations)
			t.Run(name, func(t *testing.T) {
				ctx := context.Background()
				var rec dispatch.Recorder
				e, o := newEngine(t, ownerCount, threshold, &rec)
				id, err := e.Submit(ctx, o[0], quorumtest.NewAddress(), 0, nil)
				require.NoError(t, err)
				for i := 0; i < confirmations; i++ {
					require.NoError(t, e.Confirm(ctx, o[i], id))
				}

				err = e.Execute(ctx, o[0], id)
				if confirmations >= int(threshold) {
					require.NoError(t, err)
					assert.Equal(t, 1, rec.CallCount())
				} else {
					assert.True(t, errors.ErrQuorumNotMet.Is(err))
					assert.Equal(t, 0, rec.CallCount())
				}
			})
		}
	}
}

func TestDispatchFailureCanBeRetried(t *testing.T) {
	ctx := context.Background()
	var rec dispatch.Recorder
	e, o := newEngine(t, 3, 2, &rec)
	id, err := e.Submit(ctx, o[0], quorumtest.NewAddress(), 3, nil)
	require.NoError(t, err)
	require.NoError(t, e.Confirm(ctx, o[0], id))
	require.NoError(t, e.Confirm(ctx, o[1], id))

	rec.Fail(fmt.Errorf("target unavailable"))
	err = e.Execute(ctx, o[2], id)
	assert.True(t, errors.ErrDispatchFailed.Is(err), "%+v", err)
	assert.Contains(t, err.Error(), "target unavailable")

	executed, err := e.IsExecuted(id)
	require.NoError(t, err)
	assert.False(t, executed)
	n, err := e.ConfirmationCount(id)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rec.Fail(nil)
	require.NoError(t, e.Execute(ctx, o[2], id))
	executed, err = e.IsExecuted(id)
	require.NoError(t, err)
	assert.True(t, executed)
	assert.Equal(t, 2, rec.CallCount())
}

func TestPanickingDispatcher(t *testing.T) {
	ctx := context.Background()
	d := dispatch.Func(func(context.Context, dispatch.Call) error {
		panic("target exploded")
	})
	e, o := newEngine(t, 1, 1, d)
	id, err := e.Submit(ctx, o[0], quorumtest.NewAddress(), 0, nil)
	require.NoError(t, err)
	require.NoError(t, e.Confirm(ctx, o[0], id))

	err = e.Execute(ctx, o[0], id)
	assert.True(t, errors.ErrDispatchFailed.Is(err))
	executed, err := e.IsExecuted(id)
	require.NoError(t, err)
	assert.False(t, executed)
}

func TestConcurrentExecuteDispatchesOnce(t *testing.T) {
	ctx := context.Background()
	var calls int32
	d := dispatch.Func(func(context.Context, dispatch.Call) error {
		atomic.AddInt32(&calls, 1)
		time.Sleep(10 * time.Millisecond)
		return nil
	})
	e, o := newEngine(t, 3, 2, d)
	id, err := e.Submit(ctx, o[0], quorumtest.NewAddress(), 0, nil)
	require.NoError(t, err)
	require.NoError(t, e.Confirm(ctx, o[0], id))
	require.NoError(t, e.Confirm(ctx, o[1], id))

	const workers = 20
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(caller quorum.Address) {
			defer wg.Done()
			errs <- e.Execute(ctx, caller, id)
		}(o[i%len(o)])
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.ErrAlreadyExecuted.Is(err), "%+v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestConcurrentConfirmations(t *testing.T) {
	ctx := context.Background()
	e, o := newEngine(t, 10, 10, &dispatch.Recorder{})
	id, err := e.Submit(ctx, o[0], quorumtest.NewAddress(), 0, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, owner := range o {
		wg.Add(2)
		for i := 0; i < 2; i++ {
			go func(owner quorum.Address) {
				defer wg.Done()
				err := e.Confirm(ctx, owner, id)
				if err != nil {
					assert.True(t, errors.ErrAlreadyConfirmed.Is(err))
				}
			}(owner)
		}
	}
	wg.Wait()

	n, err := e.ConfirmationCount(id)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestConfirmWhileDispatching(t *testing.T) {
	ctx := context.Background()
	var e *Engine
	var o []quorum.Address
	var confirmErr error
	d := dispatch.Func(func(ctx context.Context, call dispatch.Call) error {
		// Store access must not be locked while dispatching.
		confirmErr = e.Confirm(ctx, o[2], call.TxID)
		return nil
	})
	e, o = newEngine(t, 3, 2, d)
	id, err := e.Submit(ctx, o[0], quorumtest.NewAddress(), 0, nil)
	require.NoError(t, err)
	require.NoError(t, e.Confirm(ctx, o[0], id))
	require.NoError(t, e.Confirm(ctx, o[1], id))

	require.NoError(t, e.Execute(ctx, o[0], id))
	assert.True(t, errors.ErrAlreadyExecuted.Is(confirmErr), "%+v", confirmErr)
	n, err := e.ConfirmationCount(id)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestEventsForAppliedTransitions(t *testing.T) {
	ctx := context.Background()
	var events []Event
	listener := func(ev Event) { events = append(events, ev) }
	var rec dispatch.Recorder
	e, o := newEngine(t, 2, 1, &rec, WithListener(listener))

	id, err := e.Submit(ctx, o[0], quorumtest.NewAddress(), 0, nil)
	require.NoError(t, err)
	assert.Error(t, e.Execute(ctx, o[0], id))
	require.NoError(t, e.Confirm(ctx, o[1], id))
	assert.Error(t, e.Confirm(ctx, o[1], id))
	rec.Fail(fmt.Errorf("offline"))
	assert.Error(t, e.Execute(ctx, o[0], id))
	rec.Fail(nil)
	require.NoError(t, e.Execute(ctx, o[0], id))
	assert.Error(t, e.Execute(ctx, o[0], id))

	var kinds []EventKind
	for _, ev := range events {
		assert.Equal(t, id, ev.TxID)
		kinds = append(kinds, ev.Kind)
	}
	want := []EventKind{EventSubmission, EventConfirmation, EventExecutionFailed, EventExecution}
	assert.Equal(t, want, kinds)

	confirmation := events[1]
	assert.Equal(t, o[1], confirmation.Owner)
	require.Len(t, confirmation.Tags, 3)
	assert.Equal(t, []byte("action"), confirmation.Tags[0].Key)
	assert.Equal(t, []byte("confirmation"), confirmation.Tags[0].Value)
	assert.Equal(t, []byte("0"), confirmation.Tags[1].Value)
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	e, o := newEngine(t, 3, 1, &dispatch.Recorder{})

	assert.Equal(t, 1, e.Threshold())
	assert.Equal(t, o, e.Owners())
	assert.True(t, e.IsOwner(o[2]))
	assert.False(t, e.IsOwner(quorumtest.NewAddress()))

	for i := 0; i < 3; i++ {
		_, err := e.Submit(ctx, o[i], quorumtest.NewAddress(), uint64(i), nil)
		require.NoError(t, err)
	}
	require.NoError(t, e.Confirm(ctx, o[1], 1))
	require.NoError(t, e.Confirm(ctx, o[1], 2))
	require.NoError(t, e.Execute(ctx, o[0], 1))

	cases := map[string]struct {
		filter ledger.Filter
		want   []uint64
	}{
		"all":      {filter: ledger.All, want: []uint64{0, 1, 2}},
		"pending":  {filter: ledger.Pending, want: []uint64{0, 2}},
		"executed": {filter: ledger.Executed, want: []uint64{1}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			txs, err := e.Transactions(tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(txs))
		})
	}

	txs, err := e.ConfirmedBy(o[1])
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids(txs))

	tx, err := e.Transaction(2)
	require.NoError(t, err)
	assert.Equal(t, o[2], tx.Submitter)
	assert.Equal(t, uint64(2), tx.Value)
}

func TestCommitAfterEveryTransition(t *testing.T) {
	ctx := context.Background()
	db, cleanup := quorumtest.CommitKVStore(t)
	defer cleanup()

	o := quorumtest.NewAddresses(2)
	reg, err := owners.NewRegistry(o, 1)
	require.NoError(t, err)
	e := NewEngine(db.Adapter(), reg, ledger.NewLedger(), &dispatch.Recorder{}, WithCommitter(db))

	id, err := e.Submit(ctx, o[0], quorumtest.NewAddress(), 0, nil)
	require.NoError(t, err)
	require.NoError(t, e.Confirm(ctx, o[0], id))
	assert.Error(t, e.Confirm(ctx, o[0], id))
	require.NoError(t, e.Execute(ctx, o[1], id))

	info, err := db.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Version)

	// The committed state is visible when reading from a fresh view.
	tx, err := ledger.NewLedger().Get(db.Adapter(), id)
	require.NoError(t, err)
	assert.True(t, tx.Executed)
}

// flakyCommitter fails every Commit while fail is set.
type flakyCommitter struct {
	iavl.CommitStore
	fail bool
}

func (c *flakyCommitter) Commit() (quorum.CommitID, error) {
	if c.fail {
		return quorum.CommitID{}, fmt.Errorf("disk full")
	}
	return c.CommitStore.Commit()
}

// failingStore lets the first n writes through and fails all that follow.
type failingStore struct {
	quorum.KVStore
	n int
}

func (f *failingStore) Set(key, value []byte) error {
	if f.n == 0 {
		return fmt.Errorf("write %X: device error", key)
	}
	f.n--
	return f.KVStore.Set(key, value)
}

func (f *failingStore) NewBatch() quorum.Batch {
	return store.NewNonAtomicBatch(f)
}

func TestFailedCommitIsRolledBack(t *testing.T) {
	ctx := context.Background()
	c := &flakyCommitter{CommitStore: iavl.MemCommitStore()}
	o := quorumtest.NewAddresses(3)
	reg, err := owners.NewRegistry(o, 2)
	require.NoError(t, err)
	e := NewEngine(c.Adapter(), reg, ledger.NewLedger(), &dispatch.Recorder{}, WithCommitter(c))

	id, err := e.Submit(ctx, o[0], quorumtest.NewAddress(), 1, nil)
	require.NoError(t, err)

	c.fail = true
	_, err = e.Submit(ctx, o[1], quorumtest.NewAddress(), 2, nil)
	require.Error(t, err)
	count, err := e.TransactionCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	require.Error(t, e.Confirm(ctx, o[0], id))
	n, err := e.ConfirmationCount(id)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	confirmed, err := e.IsConfirmedBy(id, o[0])
	require.NoError(t, err)
	assert.False(t, confirmed)

	c.fail = false
	require.NoError(t, e.Confirm(ctx, o[0], id))
	next, err := e.Submit(ctx, o[1], quorumtest.NewAddress(), 2, nil)
	require.NoError(t, err)
	assert.Equal(t, id+1, next)

	// submit, confirm and the second submit
	info, err := c.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Version)
}

func TestPartialWriteIsRolledBack(t *testing.T) {
	ctx := context.Background()
	db := iavl.MemCommitStore()
	fs := &failingStore{KVStore: db.Adapter(), n: 1}
	o := quorumtest.NewAddresses(2)
	reg, err := owners.NewRegistry(o, 1)
	require.NoError(t, err)
	e := NewEngine(store.BTreeCacheable{KVStore: fs}, reg, ledger.NewLedger(), &dispatch.Recorder{}, WithCommitter(db))

	_, err = e.Submit(ctx, o[0], quorumtest.NewAddress(), 1, nil)
	assert.True(t, errors.ErrDatabase.Is(err), "%+v", err)
	count, err := e.TransactionCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
	txs, err := e.Transactions(ledger.All)
	require.NoError(t, err)
	assert.Empty(t, txs)

	fs.n = 100
	id, err := e.Submit(ctx, o[0], quorumtest.NewAddress(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)
}

func TestDispatchedButNotRecorded(t *testing.T) {
	ctx := context.Background()
	c := &flakyCommitter{CommitStore: iavl.MemCommitStore()}
	o := quorumtest.NewAddresses(2)
	reg, err := owners.NewRegistry(o, 1)
	require.NoError(t, err)
	var rec dispatch.Recorder
	var executions int
	e := NewEngine(c.Adapter(), reg, ledger.NewLedger(), &rec, WithCommitter(c),
		WithListener(func(ev Event) {
			if ev.Kind == EventExecution {
				executions++
			}
		}))

	id, err := e.Submit(ctx, o[0], quorumtest.NewAddress(), 3, nil)
	require.NoError(t, err)
	require.NoError(t, e.Confirm(ctx, o[0], id))

	c.fail = true
	err = e.Execute(ctx, o[1], id)
	require.Error(t, err)
	assert.False(t, errors.ErrDispatchFailed.Is(err), "%+v", err)
	assert.Equal(t, 1, rec.CallCount())
	assert.Equal(t, 0, executions)
	executed, err := e.IsExecuted(id)
	require.NoError(t, err)
	assert.False(t, executed)

	// The call went out, so the transaction must never be dispatched again
	// even though storing the result failed.
	c.fail = false
	err = e.Execute(ctx, o[0], id)
	assert.True(t, errors.ErrAlreadyExecuted.Is(err), "%+v", err)
	err = e.Confirm(ctx, o[1], id)
	assert.True(t, errors.ErrAlreadyExecuted.Is(err), "%+v", err)
	assert.Equal(t, 1, rec.CallCount())
}

func ids(txs []*ledger.Transaction) []uint64 {
	res := make([]uint64, len(txs))
	for i, tx := range txs {
		res[i] = tx.ID
	}
	return res
}
