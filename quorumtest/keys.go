/*
Package quorumtest provides helpers for tests: random owner keys and
addresses, and throwaway persistent stores.
*/
package quorumtest

import (
	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/crypto"
)

// NewKey returns a new random private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the condition of a new random key.
func NewCondition() quorum.Condition {
	return NewKey().PublicKey().Condition()
}

// NewAddress returns the address of a new random key.
func NewAddress() quorum.Address {
	return NewCondition().Address()
}

// NewAddresses returns n distinct random addresses.
func NewAddresses(n int) []quorum.Address {
	res := make([]quorum.Address, n)
	for i := range res {
		res[i] = NewAddress()
	}
	return res
}
