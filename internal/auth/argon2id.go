package auth

import (
	"github.com/alexedwards/argon2id"
)

// Argon2idHasher hashes credentials with the library defaults unless
// tuned parameters are supplied.
type Argon2idHasher struct {
	params *argon2id.Params
}

func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{params: argon2id.DefaultParams}
}

func (h *Argon2idHasher) Hash(password string) (string, error) {
	return argon2id.CreateHash(password, h.params)
}

func (h *Argon2idHasher) Compare(hash, password string) (bool, error) {
	return argon2id.ComparePasswordAndHash(password, hash)
}
