package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random identifier for structure nodes such as tables and
// cells. Eight random bytes keep the IDs short enough to carry inside
// rendered view markers.
func NewID(prefix string) string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	if prefix == "" {
		return hex.EncodeToString(bytes)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}
