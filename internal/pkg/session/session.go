package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	pkgredis "github.com/perfectdish/core/internal/pkg/redis"
)

const (
	DefaultTTL = 30 * 24 * time.Hour

	keyPrefix = "session:"
)

// Manager maps opaque session tokens to identity ids in Redis. Tokens expire
// server-side; there is no concurrent-session limit.
type Manager struct {
	rc  *pkgredis.Client
	ttl time.Duration
}

func NewManager(rc *pkgredis.Client, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{rc: rc, ttl: ttl}
}

// Issue creates a session for the given identity and returns the opaque token.
func (m *Manager) Issue(ctx context.Context, userID primitive.ObjectID) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	if err := m.rc.Set(ctx, keyPrefix+token, userID.Hex(), m.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Resolve returns the identity id for a token. A zero id with a nil error
// means unauthenticated, not a failure.
func (m *Manager) Resolve(ctx context.Context, token string) (primitive.ObjectID, bool, error) {
	if token == "" {
		return primitive.NilObjectID, false, nil
	}
	raw, err := m.rc.Get(ctx, keyPrefix+token)
	if err != nil {
		return primitive.NilObjectID, false, fmt.Errorf("resolve session: %w", err)
	}
	if raw == "" {
		return primitive.NilObjectID, false, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, false, fmt.Errorf("corrupt session value: %w", err)
	}
	return id, true, nil
}

// Invalidate removes a session. Idempotent: invalidating an unknown or
// already-expired token is not an error.
func (m *Manager) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.rc.Del(ctx, keyPrefix+token)
}
