package history

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashArgs creates a stable identifier for an invocation. Arguments are
// NUL-separated so that ["a b"] and ["a", "b"] hash differently.
func HashArgs(argv []string) string {
	h := sha256.New()

	for _, arg := range argv {
		h.Write([]byte(arg))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
