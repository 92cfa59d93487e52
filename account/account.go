package account

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Account is the stored state of one ledger account.
type Account struct {
	Tokens     uint64
	Owner      Pubkey
	Executable bool
	Loader     Pubkey
	Userdata   []byte
}

// fixed part of the binary layout:
// tokens u64 | owner [32] | executable u8 | loader [32] | userdata_len u64
const headerSize = 8 + PubkeySize + 1 + PubkeySize + 8

var ErrMalformed = errors.New("malformed account record")

// SerializedSize is the exact number of bytes MarshalBinary produces.
func (a *Account) SerializedSize() int {
	return headerSize + len(a.Userdata)
}

func (a *Account) MarshalBinary() ([]byte, error) {
	b := make([]byte, a.SerializedSize())
	a.encode(b)
	return b, nil
}

func (a *Account) encode(b []byte) {
	binary.LittleEndian.PutUint64(b[0:8], a.Tokens)
	n := 8
	n += copy(b[n:], a.Owner[:])
	if a.Executable {
		b[n] = 1
	} else {
		b[n] = 0
	}
	n++
	n += copy(b[n:], a.Loader[:])
	binary.LittleEndian.PutUint64(b[n:n+8], uint64(len(a.Userdata)))
	n += 8
	copy(b[n:], a.Userdata)
}

func (a *Account) UnmarshalBinary(b []byte) error {

	if len(b) < headerSize {
		return fmt.Errorf("%w: %d bytes, want at least %d", ErrMalformed, len(b), headerSize)
	}

	a.Tokens = binary.LittleEndian.Uint64(b[0:8])
	n := 8
	n += copy(a.Owner[:], b[n:n+PubkeySize])
	switch b[n] {
	case 0:
		a.Executable = false
	case 1:
		a.Executable = true
	default:
		return fmt.Errorf("%w: executable flag %d", ErrMalformed, b[n])
	}
	n++
	n += copy(a.Loader[:], b[n:n+PubkeySize])
	l := binary.LittleEndian.Uint64(b[n : n+8])
	n += 8
	if uint64(len(b)-n) != l {
		return fmt.Errorf("%w: userdata length %d, have %d bytes", ErrMalformed, l, len(b)-n)
	}
	a.Userdata = nil
	if l > 0 {
		a.Userdata = make([]byte, l)
		copy(a.Userdata, b[n:])
	}

	return nil
}

func (a *Account) Clone() *Account {
	c := *a
	if a.Userdata != nil {
		c.Userdata = append([]byte(nil), a.Userdata...)
	}
	return &c
}

// Equal compares every field, treating nil and empty userdata as equal.
func (a *Account) Equal(b *Account) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Tokens == b.Tokens &&
		a.Owner == b.Owner &&
		a.Executable == b.Executable &&
		a.Loader == b.Loader &&
		bytes.Equal(a.Userdata, b.Userdata)
}
