package dispatch

import (
	"context"
	"sync"
)

// Recorder is a Dispatcher that remembers every call it was given. After
// Fail was called with an error, calls are recorded and then fail with it.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	err   error
}

var _ Dispatcher = (*Recorder)(nil)

// Invoke records the call.
func (r *Recorder) Invoke(ctx context.Context, call Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	return r.err
}

// Fail makes all following calls return err. Use nil to succeed again.
func (r *Recorder) Fail(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Calls returns all calls received so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallCount returns how many times Invoke was called.
func (r *Recorder) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
