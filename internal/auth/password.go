package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// legacyDigest matches the unsalted hex SHA-256 digests written by the
// previous version of the dashboard.
var legacyDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches stored. The second return
// value is true when stored is a legacy digest that should be re-hashed.
func VerifyPassword(stored, password string) (ok bool, legacy bool) {
	if legacyDigest.MatchString(stored) {
		sum := sha256.Sum256([]byte(password))
		got := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(got), []byte(stored)) == 1, true
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil, false
}
