// Package services contains application services for the SalonDesk client.
// This file defines the authentication service: login, registration, account
// setup, password recovery, and session teardown.
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avoskres/salondesk/internal/client/api"
	"github.com/avoskres/salondesk/internal/client/models"
	"github.com/avoskres/salondesk/internal/client/session"
	"github.com/avoskres/salondesk/internal/common"
	"github.com/avoskres/salondesk/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login/Setup: authenticate or finish first-time setup, persist the token
//     pair and the user blob.
//   - Register: create a new account on the server.
//   - ForgotPassword/ResetPassword: password recovery round-trip.
//   - Logout: best-effort server logout, then the local logout flow.
//   - CurrentUser: cached user from the auth state blob.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, name, email, password string) error
	Setup(ctx context.Context, salonName, name, email, password string) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
}

type authService struct {
	client  *api.Client
	session *session.AuthSession
	logger  logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client and
// session.
func NewAuthService(client *api.Client, sess *session.AuthSession, logger logging.Logger) AuthService {
	return &authService{client: client, session: sess, logger: logger}
}

type credentialsResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// Login authenticates against the server and persists the issued tokens and
// the user object.
func (a *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	var resp credentialsResponse
	err := a.client.Post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	if err := a.persistCredentials(ctx, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Setup finishes first-time account creation. Like login it yields a token
// pair; the session location should be on the setup page while this runs so
// a stray 401 cannot yank the user away mid-flow.
func (a *authService) Setup(ctx context.Context, salonName, name, email, password string) (*models.User, error) {
	var resp credentialsResponse
	err := a.client.Post(ctx, "/auth/setup", map[string]string{
		"salon_name": salonName,
		"name":       name,
		"email":      email,
		"password":   password,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("setup error: %w", err)
	}

	if err := a.persistCredentials(ctx, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (a *authService) persistCredentials(ctx context.Context, resp *credentialsResponse) error {
	if err := a.session.Store().SetTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		return fmt.Errorf("token saving error: %w", err)
	}
	if resp.User != nil {
		blob, err := json.Marshal(resp.User)
		if err != nil {
			return err
		}
		if err := a.session.Store().SetAuthState(ctx, blob); err != nil {
			return fmt.Errorf("auth state saving error: %w", err)
		}
	}
	return nil
}

// Register creates a new account on the server. It does not log in.
func (a *authService) Register(ctx context.Context, name, email, password string) error {
	return a.client.Post(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, nil)
}

// ForgotPassword requests a password-reset email.
func (a *authService) ForgotPassword(ctx context.Context, email string) error {
	return a.client.Post(ctx, "/auth/forgot-password", map[string]string{"email": email}, nil)
}

// ResetPassword exchanges a reset token for a new password.
func (a *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return a.client.Post(ctx, "/auth/reset-password", map[string]string{
		"token":    token,
		"password": newPassword,
	}, nil)
}

// Logout notifies the server (best effort) and always runs the local logout
// flow: the local session ends regardless of the server call's outcome. The
// stored refresh token rides along so the server can revoke it.
func (a *authService) Logout(ctx context.Context) error {
	body := map[string]string{}
	if refresh, err := a.session.Store().RefreshToken(ctx); err == nil && refresh != "" {
		body["refresh_token"] = refresh
	}
	if err := a.client.Post(ctx, "/auth/logout", body, nil); err != nil {
		a.logger.Warn(ctx, "server logout failed, clearing local session anyway", "error", err)
	}
	a.session.Logout(ctx)
	return nil
}

// CurrentUser returns the user cached in the auth state blob, or
// common.ErrorUnauthorized when no session exists.
func (a *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	blob, err := a.session.Store().AuthState(ctx)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, common.ErrorUnauthorized
	}
	var u models.User
	if err := json.Unmarshal(blob, &u); err != nil {
		return nil, fmt.Errorf("corrupt auth state: %w", err)
	}
	return &u, nil
}
