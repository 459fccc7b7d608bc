/*
Package quorum defines all common interfaces used to tie together the
multi-signature approval engine and its supporting packages, as well as
implementations of some of the simpler components (when interfaces would be
too much overhead).

The engine is split into extensions living under the x directory:

  x/owners   - the fixed owner set and the approval threshold
  x/ledger   - persistent storage of submitted transactions
  x/approval - the submit, confirm and execute state machine
  x/dispatch - the boundary to the external collaborators

All of them operate on a KVStore. The store package provides an in memory
implementation and store/iavl a durable, versioned one.

We pass context through context.Context between the application and the
engine. The context carries the logger. The identity of the caller is never
taken from the context; it is always an explicit argument of an operation.
*/
package quorum
