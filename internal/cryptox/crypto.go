// Package cryptox holds the password digests the credential store can use.
//
// The stored value is always a string so it fits the "password" column of
// every transport. sha256 matches existing sheets (lowercase hex of the
// SHA-256 of the trimmed password). blake3 is the same shape with a
// different function. bcrypt adds a per-user salt and is therefore not
// comparable by equality; use Verify.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pricegate/internal/common"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/bcrypt"
)

const (
	DigestSHA256 = "sha256"
	DigestBLAKE3 = "blake3"
	DigestBcrypt = "bcrypt"
)

// Hasher turns a trimmed password into the value stored in the table and
// checks candidates against it.
type Hasher interface {
	Name() string
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// NewHasher returns the hasher registered under name. bcryptCost is only
// used by the bcrypt hasher; zero or out of range values are clamped.
func NewHasher(name string, bcryptCost int) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DigestSHA256:
		return SHA256Hasher{}, nil
	case DigestBLAKE3:
		return BLAKE3Hasher{}, nil
	case DigestBcrypt:
		return NewBcryptHasher(bcryptCost), nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownDigest, name)
	}
}

// SHA256Hex is the digest used by existing user sheets.
func SHA256Hex(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

type SHA256Hasher struct{}

func (SHA256Hasher) Name() string { return DigestSHA256 }

func (SHA256Hasher) Hash(password string) (string, error) {
	return SHA256Hex(password), nil
}

func (SHA256Hasher) Verify(stored, password string) bool {
	return constantTimeEqual(stored, SHA256Hex(password))
}

type BLAKE3Hasher struct{}

func (BLAKE3Hasher) Name() string { return DigestBLAKE3 }

func (BLAKE3Hasher) Hash(password string) (string, error) {
	sum := blake3.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (h BLAKE3Hasher) Verify(stored, password string) bool {
	candidate, _ := h.Hash(password)
	return constantTimeEqual(stored, candidate)
}

// BcryptMaxPasswordLen is the longest input bcrypt accepts, in bytes.
const BcryptMaxPasswordLen = 72

// BcryptHasher salts every password. Cost 4-31, defaults to bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Name() string { return DigestBcrypt }

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > BcryptMaxPasswordLen {
		return "", fmt.Errorf("%w: bcrypt accepts at most %d bytes", common.ErrPasswordTooLong, BcryptMaxPasswordLen)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
