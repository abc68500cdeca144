package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NewOrderToken mints the opaque handle that correlates the provider's
// success callback to one order: the hex sha256 digest of 32 bytes of
// cryptographic randomness, 64 characters, unguessable.
func NewOrderToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed reading random bytes with error=%w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
