package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"videotube/internal/model"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// checkPasswordLength rejects passwords bcrypt would refuse to hash.
func checkPasswordLength(plain string) error {
	if len(plain) > maxPasswordBytes {
		return model.ErrPasswordTooLong
	}
	return nil
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Compare reports whether plain matches hash. A mismatch is not an error.
	Compare(hash, plain string) bool
}

// BcryptHasher is a PasswordHasher with a fixed work factor.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// applyPassword replaces user.PasswordHash with the hash of plain. Callers
// pass changed=false when the stored hash must be kept, so an existing hash
// is never hashed a second time.
func applyPassword(h PasswordHasher, user *model.User, plain string, changed bool) error {
	if !changed {
		return nil
	}
	hashed, err := h.Hash(plain)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hashed
	return nil
}
