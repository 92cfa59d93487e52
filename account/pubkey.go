package account

import (
	"bytes"
	"crypto/rand"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

const PubkeySize = 32

// Pubkey identifies an account. The first byte also selects its shard.
type Pubkey [PubkeySize]byte

func NewRandomPubkey() Pubkey {
	p := Pubkey{}
	rand.Read(p[:])
	return p
}

func ParsePubkey(s string) (Pubkey, error) {
	p := Pubkey{}
	b := base58.Decode(s)
	if len(b) != PubkeySize {
		return p, fmt.Errorf("invalid pubkey '%s'", s)
	}
	copy(p[:], b)
	return p, nil
}

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

func (p Pubkey) Compare(o Pubkey) int {
	return bytes.Compare(p[:], o[:])
}

func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pubkey) UnmarshalText(text []byte) error {
	v, err := ParsePubkey(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

const HashSize = 32

// Hash is a SHA-256 digest. Recency tokens are hashes too.
type Hash [HashSize]byte

func (h Hash) String() string {
	return base58.Encode(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// Signature is opaque to the account store; only its presence and identity matter.
type Signature []byte
