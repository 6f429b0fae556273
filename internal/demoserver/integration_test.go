package demoserver_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avoskres/salondesk/internal/client/api"
	"github.com/avoskres/salondesk/internal/client/models"
	"github.com/avoskres/salondesk/internal/client/services"
	"github.com/avoskres/salondesk/internal/client/session"
	"github.com/avoskres/salondesk/internal/demoserver"
	"github.com/avoskres/salondesk/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type countNav struct {
	calls atomic.Int32
}

func (n *countNav) NavigateTo(string) { n.calls.Add(1) }

// The full stack end to end: the real client (token store, interceptors,
// single-flight refresh) against the real demo backend.
func TestClientAgainstDemoServer(t *testing.T) {
	logger := logging.NewTextLogger(io.Discard, slog.LevelError)
	secret := []byte("integration-secret")

	app, err := demoserver.NewApp(demoserver.Config{Secret: secret, UploadDir: t.TempDir()}, logger)
	require.NoError(t, err)
	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	ctx := context.Background()
	db, err := session.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	store := session.NewTokenStore(session.NewSQLiteKV(db), nil)
	nav := &countNav{}
	sess := session.NewAuthSession(store, nav, "", logger)
	client, err := api.New(api.Config{BaseURL: srv.URL}, sess, nil, logger)
	require.NoError(t, err)

	auth := services.NewAuthService(client, sess, logger)
	crm := services.NewCRMService(client)

	// Login with the seeded demo account.
	user, err := auth.Login(ctx, "admin@salon.demo", "demo1234")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)

	// Normal authenticated traffic.
	created, err := crm.CreateCustomer(ctx, models.Customer{Name: "Bea", Email: "bea@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	list, err := crm.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Swap the stored access token for an already-expired one signed with the
	// server's key. The next call must transparently refresh and still succeed.
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": user.ID,
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)
	require.NoError(t, store.SetTokens(ctx, expired, ""))

	list, err = crm.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int32(0), nav.calls.Load(), "a recoverable expiry must not redirect")

	fresh, err := store.AccessToken(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, expired, fresh, "refresh must persist the new access token")

	// Logout ends the session locally and revokes the refresh token remotely.
	refresh, err := store.RefreshToken(ctx)
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx))
	assert.Equal(t, int32(1), nav.calls.Load())

	_, err = app.Tokens().Refresh(refresh)
	require.Error(t, err, "server must have revoked the refresh token")

	_, err = crm.Customers(ctx)
	require.ErrorIs(t, err, api.ErrNotAuthenticated)
}
