package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomToken returns a URL-safe random token suitable for one-time links.
func RandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b)[:43], nil
}
