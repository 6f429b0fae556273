// Package demoserver is a self-contained in-memory backend implementing the
// SalonDesk REST contract: the auth endpoints (login, refresh, logout,
// register, setup, password recovery) and the CRM resources. It exists so
// demo deployments and integration tests have a real server to talk to
// without any external infrastructure.
package demoserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/avoskres/salondesk/internal/filex"
	"github.com/avoskres/salondesk/internal/logging"
)

// Config holds demo server settings.
type Config struct {
	Addr      string
	Secret    []byte
	UploadDir string
}

type App struct {
	cfg       Config
	store     *Store
	tokens    *TokenManager
	uploadDir string
	logger    logging.Logger
}

func NewApp(cfg Config, logger logging.Logger) (*App, error) {
	store := NewStore()
	if err := store.Seed(); err != nil {
		return nil, err
	}

	uploadDir := cfg.UploadDir
	if uploadDir == "" {
		var err error
		uploadDir, err = filex.EnsureSubDir("uploads")
		if err != nil {
			return nil, err
		}
	}

	return &App{
		cfg:       cfg,
		store:     store,
		tokens:    NewTokenManager(cfg.Secret, 0),
		uploadDir: uploadDir,
		logger:    logger,
	}, nil
}

// Tokens exposes the token manager; integration tests use it to mint
// short-lived tokens directly.
func (a *App) Tokens() *TokenManager {
	return a.tokens
}

// Handler builds the HTTP routing table. Auth endpoints are open; everything
// else requires a valid bearer token.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", a.handleLogin)
	mux.HandleFunc("POST /auth/refresh", a.handleRefresh)
	mux.HandleFunc("POST /auth/logout", a.handleLogout)
	mux.HandleFunc("POST /auth/register", a.handleRegister)
	mux.HandleFunc("POST /auth/setup", a.handleSetup)
	mux.HandleFunc("POST /auth/forgot-password", a.handleForgotPassword)
	mux.HandleFunc("POST /auth/reset-password", a.handleResetPassword)

	mux.HandleFunc("GET /clients", a.requireAuth(a.handleListClients))
	mux.HandleFunc("POST /clients", a.requireAuth(a.handleCreateClient))
	mux.HandleFunc("PUT /clients/{id}", a.requireAuth(a.handleUpdateClient))
	mux.HandleFunc("DELETE /clients/{id}", a.requireAuth(a.handleDeleteClient))

	mux.HandleFunc("GET /appointments", a.requireAuth(a.handleListAppointments))
	mux.HandleFunc("POST /appointments", a.requireAuth(a.handleCreateAppointment))
	mux.HandleFunc("DELETE /appointments/{id}", a.requireAuth(a.handleDeleteAppointment))

	mux.HandleFunc("GET /services", a.requireAuth(a.handleListServices))
	mux.HandleFunc("GET /staff", a.requireAuth(a.handleListStaff))
	mux.HandleFunc("POST /uploads", a.requireAuth(a.handleUpload))

	return mux
}

// Run serves until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{Addr: a.cfg.Addr, Handler: a.Handler()}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	a.logger.Info(ctx, "demo server listening", "addr", a.cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// readBodyLoose decodes JSON without validation, tolerating an empty body.
func readBodyLoose(r *http.Request, v any) bool {
	if r.Body == nil {
		return false
	}
	return json.NewDecoder(r.Body).Decode(v) == nil
}
