/*
Package ledger stores submitted transactions together with their confirmation
state.

Transactions are kept in the "txs" bucket under their 8 byte big endian id,
so iteration follows submission order. A "confirmer" index lists the
transactions each owner approved. The ledger performs no authorization; only
the approval engine is expected to mutate it.
*/
package ledger
