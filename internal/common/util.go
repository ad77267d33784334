package common

import (
	"crypto/rand"
	"encoding/base64"
)

// MakeRandBase64String returns size random bytes encoded with unpadded
// URL-safe base64, suitable for links and headers.
func MakeRandBase64String(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// WipeByteArray overwrites b with zeros. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
