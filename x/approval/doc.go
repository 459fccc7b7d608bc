/*
Package approval implements the multi signature approval engine.

Any owner may submit a transaction. Owners confirm it one by one and once the
number of confirmations reaches the threshold any owner may execute it. An
execution hands the call to a dispatch.Dispatcher and only marks the
transaction executed if the dispatch succeeded. A failed dispatch leaves the
transaction pending with all its confirmations, so it can be retried.

Every state change runs on a cache wrap of the store and is written only when
the whole operation succeeded. Listeners and the logger are told about
applied transitions only.
*/
package approval
