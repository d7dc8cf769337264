package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "auth:revoked:"

// Revoker is a Redis-backed token denylist. Sign-out stores the token's jti
// until its natural expiry; the JWT middleware rejects revoked tokens, so no
// request from a departed session can succeed after sign-out commits.
type Revoker struct {
	client *redis.Client
}

// NewRevoker creates a token revocation store.
func NewRevoker(client *redis.Client) *Revoker {
	return &Revoker{client: client}
}

// Revoke denylists a token id until the given expiry.
func (r *Revoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil // already expired, nothing to deny
	}
	return r.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether a token id has been revoked.
func (r *Revoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
