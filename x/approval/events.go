package approval

import (
	"strconv"

	"github.com/ourkive/quorum"
	"github.com/tendermint/tendermint/libs/common"
)

// EventKind names a state transition.
type EventKind string

const (
	// EventSubmission is emitted when a transaction was submitted.
	EventSubmission EventKind = "submission"
	// EventConfirmation is emitted when an owner confirmed a transaction.
	EventConfirmation EventKind = "confirmation"
	// EventExecution is emitted when a transaction was dispatched and
	// marked executed.
	EventExecution EventKind = "execution"
	// EventExecutionFailed is emitted when the dispatcher rejected the call.
	// The transaction stays pending.
	EventExecutionFailed EventKind = "execution_failed"
)

// Event describes an applied transition. Tags carry the same information in
// key value form.
type Event struct {
	Kind  EventKind
	TxID  uint64
	Owner quorum.Address
	Tags  []common.KVPair
}

// Listener is notified synchronously of every event, after the state was
// written. It must not block.
type Listener func(Event)

func newEvent(kind EventKind, id uint64, owner quorum.Address) Event {
	return Event{
		Kind:  kind,
		TxID:  id,
		Owner: owner,
		Tags: []common.KVPair{
			{Key: []byte("action"), Value: []byte(kind)},
			{Key: []byte("tx"), Value: []byte(strconv.FormatUint(id, 10))},
			{Key: []byte("owner"), Value: []byte(owner.String())},
		},
	}
}
