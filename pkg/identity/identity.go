// Package identity manages local identities and the default-identity convention.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/blake2b"
)

// DefaultName is the conventional name that resolves to the default identity.
const DefaultName = "default"

// Identity is a named local identity.
type Identity struct {
	Name       string    `json:"name"`
	Identifier string    `json:"identifier"`
	PublicKey  string    `json:"public_key"`
	IsDefault  bool      `json:"is_default,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewIdentifier derives the identifier of a public key: "I" followed by the
// hex blake2b-256 digest of the key.
func NewIdentifier(pub ed25519.PublicKey) string {
	sum := blake2b.Sum256(pub)
	return "I" + hex.EncodeToString(sum[:])
}

// Generate creates a new identity named name from fresh key material read from r.
// A nil r uses crypto/rand.
func Generate(name string, r io.Reader) (*Identity, error) {
	if r == nil {
		r = rand.Reader
	}
	pub, _, err := ed25519.GenerateKey(r)
	if err != nil {
		return nil, fmt.Errorf("identity:identity - failed to generate key: %w", err)
	}
	return &Identity{
		Name:       name,
		Identifier: NewIdentifier(pub),
		PublicKey:  hex.EncodeToString(pub),
		CreatedAt:  time.Now().UTC(),
	}, nil
}
