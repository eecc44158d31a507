package core

import (
	"crypto/sha256"

	"github.com/krehermann/intcode/types"
)

type Hasher[T any] interface {
	Hash(T) types.Hash
}

// DefaultProgramHasher hashes the canonical text form, so the same image
// parsed from differently spaced text gets the same hash.
type DefaultProgramHasher struct{}

func (DefaultProgramHasher) Hash(p Program) types.Hash {
	return types.Hash(sha256.Sum256([]byte(p.String())))
}
