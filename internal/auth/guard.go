// Package auth implements the inbound credential guard. The connector
// holds one shared secret; every discovery and widget request must present
// it. Verification is constant-time and the secret never appears in logs,
// errors, or responses.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/vianexus/terminal-connector/pkg/errors"
)

// Guard verifies presented credentials against the configured key. It
// stores only a digest, so the key itself is not reachable from the guard.
type Guard struct {
	digest [sha256.Size]byte
}

// NewGuard builds a guard for the configured key. An empty key is refused:
// the caller must fail startup rather than run open.
func NewGuard(key string) (*Guard, error) {
	if key == "" {
		return nil, fmt.Errorf("empty connector API key")
	}
	return &Guard{digest: sha256.Sum256([]byte(key))}, nil
}

// Authorize checks a presented credential. Comparing fixed-size digests
// keeps the comparison constant-time regardless of the presented length.
func (g *Guard) Authorize(presented string) error {
	if presented == "" {
		return errors.Unauthorized()
	}
	sum := sha256.Sum256([]byte(presented))
	if subtle.ConstantTimeCompare(sum[:], g.digest[:]) != 1 {
		return errors.Unauthorized()
	}
	return nil
}
