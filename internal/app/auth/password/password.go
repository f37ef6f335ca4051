// Package password hashes and verifies user passwords. New hashes are always
// bcrypt; verification additionally understands the legacy Werkzeug-style
// PBKDF2 encoding so accounts imported from the old system keep working
// without a forced reset.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// bcryptCost matches the salt rounds the previous generation of the service
// used, so freshly written hashes stay comparable in strength.
const bcryptCost = 12

const legacyPrefix = "pbkdf2:sha256:"

// Hash produces a bcrypt hash of the plaintext.
func Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether plain matches the stored hash. The hash format is
// dispatched on its prefix: legacy PBKDF2, bcrypt, or unknown. Unknown
// formats, empty hashes, and parse failures all verify false; Verify never
// returns an error to the caller.
func Verify(plain, stored string) bool {
	switch format(stored) {
	case formatLegacyPbkdf2:
		return verifyLegacy(plain, stored)
	case formatBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
	default:
		return false
	}
}

type hashFormat int

const (
	formatUnknown hashFormat = iota
	formatLegacyPbkdf2
	formatBcrypt
)

func format(stored string) hashFormat {
	switch {
	case strings.HasPrefix(stored, legacyPrefix):
		return formatLegacyPbkdf2
	case strings.HasPrefix(stored, "$2a$"),
		strings.HasPrefix(stored, "$2b$"),
		strings.HasPrefix(stored, "$2y$"):
		return formatBcrypt
	default:
		return formatUnknown
	}
}

// verifyLegacy handles "pbkdf2:sha256:<iterations>$<b64 salt>$<b64 hash>".
func verifyLegacy(plain, stored string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 3 {
		return false
	}

	method := strings.Split(parts[0], ":")
	if len(method) != 3 {
		return false
	}
	iterations, err := strconv.Atoi(method[2])
	if err != nil || iterations <= 0 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil || len(want) == 0 {
		return false
	}

	got := pbkdf2.Key([]byte(plain), salt, iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
