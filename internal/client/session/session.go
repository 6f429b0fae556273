package session

import (
	"context"
	"strings"
	"sync"

	"github.com/avoskres/salondesk/internal/common"
	"github.com/avoskres/salondesk/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Navigator is invoked when the session decides the user must be moved to a
// different screen, e.g. the login page after an unrecoverable auth failure.
// The CLI implementation drops to the logged-out prompt; tests count calls.
type Navigator interface {
	NavigateTo(path string)
}

// RefreshFunc exchanges a refresh token for a new token pair. newRefresh may
// be empty when the backend does not rotate refresh tokens.
type RefreshFunc func(ctx context.Context, refreshToken string) (access string, newRefresh string, err error)

// AuthSession owns the token lifecycle for one client instance: the token
// store, the single-flight refresh operation, and the logout flow. It is
// constructed explicitly and injected into the HTTP layer, so tests get a
// fresh session each.
type AuthSession struct {
	store    *TokenStore
	nav      Navigator
	basePath string
	logger   logging.Logger

	refreshFn RefreshFunc
	group     singleflight.Group

	mu       sync.RWMutex
	location string
}

// NewAuthSession binds the token store and navigator. basePath is the URL
// prefix of a sub-path deployment ("" for root). SetRefreshFunc must be
// called before the first Refresh; the HTTP client does this when it binds
// to the session.
func NewAuthSession(store *TokenStore, nav Navigator, basePath string, logger logging.Logger) *AuthSession {
	return &AuthSession{
		store:    store,
		nav:      nav,
		basePath: basePath,
		logger:   logger,
		location: "/",
	}
}

// SetRefreshFunc installs the network operation used to mint new access
// tokens. Kept separate from the constructor because the HTTP client that
// performs the call is itself constructed around the session.
func (s *AuthSession) SetRefreshFunc(fn RefreshFunc) {
	s.refreshFn = fn
}

// Store exposes the session's token store.
func (s *AuthSession) Store() *TokenStore {
	return s.store
}

// SetLocation records the user's current path, relative to the base path.
// The logout flow consults it for the setup-page guard.
func (s *AuthSession) SetLocation(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = path
}

// Location returns the recorded current path.
func (s *AuthSession) Location() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location
}

// LoginPath returns the navigation target for unauthenticated states,
// honoring sub-path deployments.
func (s *AuthSession) LoginPath() string {
	return s.basePath + "/login"
}

// RequireLogin sends the user to the login page without touching stored state.
// Used when a request is aborted before it is ever sent.
func (s *AuthSession) RequireLogin() {
	if s.nav != nil {
		s.nav.NavigateTo(s.LoginPath())
	}
}

// Refresh exchanges the stored refresh token for a new access token.
//
// Concurrency contract: at most one refresh network call is in flight at any
// time; concurrent callers share the outcome of that one call. Once the
// operation settles, the next caller starts a fresh attempt.
//
// With no stored refresh token it fails immediately with
// common.ErrorUnauthorized and performs no network call and no side effects.
// When the network operation fails, the logout flow runs exactly once as a
// side effect before the error is returned to every waiter.
func (s *AuthSession) Refresh(ctx context.Context) (string, error) {
	v, err, _ := s.group.Do("refresh", func() (any, error) {
		refresh, err := s.store.RefreshToken(ctx)
		if err != nil {
			return "", err
		}
		if refresh == "" {
			return "", common.ErrorUnauthorized
		}

		access, newRefresh, err := s.refreshFn(ctx, refresh)
		if err != nil {
			s.logger.Warn(ctx, "token refresh failed", "error", err)
			s.Logout(ctx)
			return "", err
		}

		// Re-persist the old refresh token unless the backend rotated it;
		// the refresh response is authoritative for the access token only.
		if newRefresh == "" {
			newRefresh = refresh
		}
		if err := s.store.SetTokens(ctx, access, newRefresh); err != nil {
			return "", err
		}
		return access, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Logout irrecoverably ends the session: both tokens and the cached auth
// state are cleared, and the user is sent to the login page. The exception is
// the setup page (and anything below it), where a half-initialized session is
// expected and yanking the user away would interrupt account creation.
func (s *AuthSession) Logout(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error(ctx, "failed to clear session state", "error", err)
	}

	rel := strings.TrimPrefix(s.Location(), s.basePath)
	if rel == "/setup" || strings.HasPrefix(rel, "/setup/") {
		return
	}
	if s.nav != nil {
		s.nav.NavigateTo(s.LoginPath())
	}
}
