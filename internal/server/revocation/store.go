// Package revocation keeps the set of tokens invalidated before their expiry.
//
// Entries are keyed by the SHA-256 digest of the compact token and live only
// as long as the token itself would, so the set never outgrows the number of
// tokens revoked within one token lifetime.
package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type Store interface {
	// Revoke marks token as invalid until the given instant. Instants in the
	// past are ignored: the token is already dead.
	Revoke(ctx context.Context, token string, until time.Time) error
	// IsRevoked reports whether token has been revoked and not yet expired.
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Digest returns the key under which token is stored.
func Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
