/*
Package owners implements the owner registry: the fixed set of addresses
allowed to approve transactions, together with the quorum threshold.

The configuration is written once, from genesis, and there is no way to add,
remove or rotate owners afterwards.
*/
package owners
