package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Digest returns a short, stable hex fingerprint of free text so request
// logs can correlate inputs without storing them.
func Digest(s string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(s)))
	return hex.EncodeToString(sum[:8])
}
