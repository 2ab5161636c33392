package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/perfectdish/core/internal/models"
	"github.com/perfectdish/core/internal/repository"
)

// Service is the credential verifier: it owns password hashing for local
// accounts and normalizes verified OAuth profiles into identity lookups.
type Service struct {
	store repository.IdentityStore
}

func NewService(store repository.IdentityStore) *Service {
	return &Service{store: store}
}

// Register creates a local identity. The raw password never reaches the
// store; only its bcrypt hash is persisted.
func (s *Service) Register(ctx context.Context, username, password string) (*models.UserModel, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return nil, fmt.Errorf("%w: username must be at least 3 characters", models.ErrInvalidCredentials)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", models.ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.store.CreateLocal(ctx, username, string(hash))
}

// VerifyLocal checks a username/password pair. Every failure mode collapses
// into ErrInvalidCredentials so the response cannot reveal whether the
// username exists.
func (s *Service) VerifyLocal(ctx context.Context, username, password string) (*models.UserModel, error) {
	u, err := s.store.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if u == nil || !u.HasLocalCredential() {
		return nil, models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	return u, nil
}

// ResolveExternal maps a verified OAuth profile to an identity. The provider
// handshake has already been trusted by the caller; no token re-verification
// happens here. Prefers the given-name hint, falling back to the provider's
// display name.
func (s *Service) ResolveExternal(ctx context.Context, provider, externalID, givenName, displayName string) (*models.UserModel, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%s profile has no subject id", provider)
	}
	hint := strings.TrimSpace(givenName)
	if hint == "" {
		hint = strings.TrimSpace(displayName)
	}
	return s.store.FindOrCreateByExternalID(ctx, provider, externalID, hint)
}
