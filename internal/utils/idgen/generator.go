// Package idgen generates identifiers for local message entries.
package idgen

import (
	"crypto/rand"
	"fmt"
)

const charset = "0123456789abcdefghijklmnopqrstuvwxyz"

// LocalPrefix marks client-assigned message ids so they can never collide with
// server-assigned ones.
const LocalPrefix = "local"

// GenerateSecureID generates a cryptographically secure alphanumeric ID with
// the given prefix.
func GenerateSecureID(prefix string, length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}

	encoded := make([]byte, length)
	for i := range bytes {
		encoded[i] = charset[bytes[i]%byte(len(charset))]
	}

	return fmt.Sprintf("%s_%s", prefix, string(encoded)), nil
}

// LocalMessageID generates an id for an optimistic message entry.
func LocalMessageID() (string, error) {
	return GenerateSecureID(LocalPrefix, 20)
}
