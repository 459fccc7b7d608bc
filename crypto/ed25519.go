/*
Package crypto holds the ed25519 keys used to identify owners.

An owner is known to the registry only by the address of its public key
condition, "sigs/ed25519/<public key>".
*/
package crypto

import (
	"crypto/rand"

	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/errors"
	"golang.org/x/crypto/ed25519"
)

// ExtensionName is used for the conditions we get from signatures
const ExtensionName = "sigs"

// PrivateKey is an ed25519 signing key.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{key: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInput, "seed must be %d bytes", ed25519.SeedSize)
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// ParsePrivateKey loads a key serialized with Bytes.
func ParsePrivateKey(raw []byte) (*PrivateKey, error) {
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	key := make(ed25519.PrivateKey, len(raw))
	copy(key, raw)
	return &PrivateKey{key: key}, nil
}

// Bytes returns the raw private key.
func (p *PrivateKey) Bytes() []byte {
	return append([]byte(nil), p.key...)
}

// Sign returns a matching signature for this private key
func (p *PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(p.key, message)
}

// PublicKey returns the corresponding PublicKey
func (p *PrivateKey) PublicKey() PublicKey {
	return PublicKey(p.key.Public().(ed25519.PublicKey))
}

// PublicKey is an ed25519 verification key.
type PublicKey []byte

// Verify verifies the signature was created with this message and public key
func (p PublicKey) Verify(message, sig []byte) bool {
	if len(p) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p), message, sig)
}

// Condition encodes the public key into a permission condition
func (p PublicKey) Condition() quorum.Condition {
	return quorum.NewCondition(ExtensionName, "ed25519", p)
}

// Address returns the owner address of this key.
func (p PublicKey) Address() quorum.Address {
	return p.Condition().Address()
}
