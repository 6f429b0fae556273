package session

import (
	"context"
	"fmt"

	"github.com/avoskres/salondesk/internal/common"
)

// KV is the durable key-value backend of the token store. Implementations
// must return (nil, nil) for absent keys, and must apply SetMany and
// DeleteMany atomically: a failure leaves none of the keys changed.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, entries map[string][]byte) error
	DeleteMany(ctx context.Context, keys ...string) error
}

// CookieBackend mirrors the access token into cookie storage so that
// server-side middleware sees the same credential the client uses.
type CookieBackend interface {
	SetAccessCookie(token string)
	ClearAccessCookie()
	AccessCookie() (string, bool)
}

// TokenStore is the single source of truth for token reads and writes.
// Every mutation fans out from here; no other code touches the underlying
// backends directly.
type TokenStore struct {
	kv     KV
	cookie CookieBackend
}

// NewTokenStore binds the durable backend and the cookie backend.
// cookie may be nil in headless contexts; cookie operations then become
// no-ops rather than failures.
func NewTokenStore(kv KV, cookie CookieBackend) *TokenStore {
	return &TokenStore{kv: kv, cookie: cookie}
}

// SetTokens writes the access token to both the durable store and the
// cookie. If refresh is non-empty it is written to the durable store only;
// the refresh token never enters cookie storage. Both keys go down in one
// transaction so a failure cannot leave a new access token beside a stale
// refresh token.
func (s *TokenStore) SetTokens(ctx context.Context, access, refresh string) error {
	entries := map[string][]byte{common.AccessTokenKey: []byte(access)}
	if refresh != "" {
		entries[common.RefreshTokenKey] = []byte(refresh)
	}
	if err := s.kv.SetMany(ctx, entries); err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}
	if s.cookie != nil {
		s.cookie.SetAccessCookie(access)
	}
	return nil
}

// AccessToken returns the stored access token, or "" when absent.
func (s *TokenStore) AccessToken(ctx context.Context) (string, error) {
	v, err := s.kv.Get(ctx, common.AccessTokenKey)
	if err != nil {
		return "", fmt.Errorf("read access token: %w", err)
	}
	return string(v), nil
}

// RefreshToken returns the stored refresh token, or "" when absent.
func (s *TokenStore) RefreshToken(ctx context.Context) (string, error) {
	v, err := s.kv.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		return "", fmt.Errorf("read refresh token: %w", err)
	}
	return string(v), nil
}

// SetAuthState caches the serialized auth/user state blob alongside the tokens.
func (s *TokenStore) SetAuthState(ctx context.Context, blob []byte) error {
	return s.kv.Set(ctx, common.AuthStateKey, blob)
}

// AuthState returns the cached auth/user state blob, or nil when absent.
func (s *TokenStore) AuthState(ctx context.Context) ([]byte, error) {
	return s.kv.Get(ctx, common.AuthStateKey)
}

// Clear removes both tokens and the cached auth state from the durable
// store in one transaction and expires the access cookie.
func (s *TokenStore) Clear(ctx context.Context) error {
	err := s.kv.DeleteMany(ctx, common.AccessTokenKey, common.RefreshTokenKey, common.AuthStateKey)
	if err != nil {
		return fmt.Errorf("clear session state: %w", err)
	}
	if s.cookie != nil {
		s.cookie.ClearAccessCookie()
	}
	return nil
}
