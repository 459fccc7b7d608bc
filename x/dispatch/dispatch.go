/*
Package dispatch is the boundary between approved transactions and the
systems that act on them.

A Dispatcher receives one Call per executed transaction. The approval engine
marks a transaction executed only when Invoke returned nil.
*/
package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/errors"
)

// Call is the externally visible effect of an approved transaction.
type Call struct {
	TxID   uint64         `json:"tx_id"`
	Target quorum.Address `json:"target"`
	Value  uint64         `json:"value"`
	Data   []byte         `json:"data"`
}

// Dispatcher performs approved calls.
type Dispatcher interface {
	// Invoke must return nil only if the call was performed.
	Invoke(ctx context.Context, call Call) error
}

// Func adapts a function to the Dispatcher interface.
type Func func(ctx context.Context, call Call) error

var _ Dispatcher = Func(nil)

// Invoke calls f.
func (f Func) Invoke(ctx context.Context, call Call) error {
	return f(ctx, call)
}

// Safe invokes the dispatcher, turning a panic into an error.
func Safe(ctx context.Context, d Dispatcher, call Call) (err error) {
	defer errors.Recover(&err)
	return d.Invoke(ctx, call)
}

// Router forwards calls to the dispatcher registered for their target.
type Router struct {
	mu     sync.RWMutex
	routes map[string]Dispatcher
}

var _ Dispatcher = (*Router)(nil)

// NewRouter returns a router with no routes.
func NewRouter() *Router {
	return &Router{routes: make(map[string]Dispatcher)}
}

// Handle registers the dispatcher for given target. It panics if the target
// is already handled.
func (r *Router) Handle(target quorum.Address, d Dispatcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routes[string(target)]; ok {
		panic("target already routed: " + target.String())
	}
	r.routes[string(target)] = d
}

// Invoke forwards the call. Calls to unknown targets fail.
func (r *Router) Invoke(ctx context.Context, call Call) error {
	r.mu.RLock()
	d, ok := r.routes[string(call.Target)]
	r.mu.RUnlock()
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "no route for target %s", call.Target)
	}
	return d.Invoke(ctx, call)
}

// StreamDispatcher writes each call as one JSON line to the underlying
// writer, so approved calls can be piped to a relayer.
type StreamDispatcher struct {
	mu  sync.Mutex
	enc *json.Encoder
}

var _ Dispatcher = (*StreamDispatcher)(nil)

// NewStreamDispatcher returns a dispatcher writing to w.
func NewStreamDispatcher(w io.Writer) *StreamDispatcher {
	return &StreamDispatcher{enc: json.NewEncoder(w)}
}

// Invoke writes the call. A write error is a failed dispatch.
func (s *StreamDispatcher) Invoke(ctx context.Context, call Call) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(call); err != nil {
		return errors.Wrap(err, "write call")
	}
	return nil
}
