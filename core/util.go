package core

import (
	"crypto/rand"
	"fmt"
)

// NewID returns a random 32-hex-char identifier. Used for upload sessions
// and job directories; callers must treat it as opaque.
func NewID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x", b)
}
