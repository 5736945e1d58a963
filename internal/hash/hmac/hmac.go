// Package hmac provides keyed HMAC-SHA256 hashing.
package hmac

import (
	stdhmac "crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Hasher implements crawler.Hasher using HMAC-SHA256 over a fixed key.
// An empty key is valid and still yields a deterministic digest.
type Hasher struct {
	key []byte
}

// New returns an HMAC-SHA256 hasher bound to key.
func New(key []byte) *Hasher {
	return &Hasher{key: append([]byte(nil), key...)}
}

// Hash hashes the input and returns a hex digest.
func (h *Hasher) Hash(data []byte) (string, error) {
	mac := stdhmac.New(sha256.New, h.key)
	if _, err := mac.Write(data); err != nil {
		return "", err
	}
	return hex.EncodeToString(mac.Sum(nil)), nil
}
