// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned when a password does not match its hash.
var ErrMismatch = errors.New("password does not match")

// Hash returns a salted bcrypt hash of the plaintext password.
func Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// Check compares plain against hash. The comparison runs in constant time
// with respect to the password contents.
func Check(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}

var dummyHash = sync.OnceValue(func() string {
	b, err := bcrypt.GenerateFromPassword([]byte("ace-no-such-account"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("password: generate dummy hash: %v", err))
	}
	return string(b)
})

// DummyHash returns a fixed bcrypt hash at the default cost. Comparing a
// password against it costs the same as checking a real account, so callers
// can spend that time when no account exists.
func DummyHash() string {
	return dummyHash()
}
