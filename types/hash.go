package types

import (
	"encoding/hex"
	"fmt"
)

const HASH_BYTE_LEN = 32

// Hash identifies a program image.
type Hash [HASH_BYTE_LEN]uint8

func HashFromBytes(b []byte) (Hash, error) {
	var val Hash
	if len(b) != HASH_BYTE_LEN {
		return val, fmt.Errorf("given byte slice len %d but must be %d", len(b), HASH_BYTE_LEN)
	}
	copy(val[:], b)
	return val, nil
}

func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	return HashFromBytes(b)
}

func (h Hash) IsZero() bool {
	for _, b := range h {
		if b != 0 {
			return false
		}
	}
	return true
}

func (h Hash) ToSlice() []byte {
	out := make([]byte, HASH_BYTE_LEN)
	copy(out, h[:])
	return out
}

func (h Hash) String() string {
	return hex.EncodeToString(h.ToSlice())
}

// Prefix is a short form for logs.
func (h Hash) Prefix() string {
	return h.String()[:8]
}
