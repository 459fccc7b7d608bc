/*
Package errors implements custom error interfaces for quorum.

The idea is to reuse as many errors from this package as possible. Every
error returned by the approval engine, the ledger and the owner registry is
of one of the kinds registered here, so callers can test the outcome with

	if errors.ErrQuorumNotMet.Is(err) { ... }

If you want to register a custom error - use Register(code, description).
For reusing errors - use ErrXxx.New and ErrXxx.Newf, or Wrap an existing
error with additional context.

There is also support for stacktraces. Create the error using
ErrXyz.New("...") or errors.Wrap(err, "...") at the point of creation to
ensure we attach a stacktrace. If you wrap multiple times, we only record the
first wrap with the stacktrace.

	%s is just the error message
	%+v is the message followed by the stack trace
*/
package errors
