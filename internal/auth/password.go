package auth

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns passwords into salted bcrypt hashes. The salt is generated
// per call and embedded in the returned hash.
type Hasher struct {
	cost  int
	dummy []byte
}

func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	// Compared against when the email is unknown so both login failures
	// cost one bcrypt round.
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	dummy, err := bcrypt.GenerateFromPassword(seed, cost)
	if err != nil {
		return nil, err
	}
	return &Hasher{cost: cost, dummy: dummy}, nil
}

func (h *Hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *Hasher) Verify(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		// Malformed stored hash; still a failed login.
		return false
	}
	return err == nil
}

// VerifyAbsent burns the same work as Verify and always fails.
func (h *Hasher) VerifyAbsent(password string) bool {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
	return false
}
