package demoserver

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avoskres/salondesk/internal/client/models"
	"github.com/avoskres/salondesk/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 24 * time.Hour
)

type accessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

type refreshRecord struct {
	userID    string
	expiresAt time.Time
}

// TokenManager mints JWT access tokens and keeps the opaque refresh tokens
// it issued. Refresh yields a new access token only; the refresh token is
// reusable until it expires or is revoked.
type TokenManager struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	mu      sync.Mutex
	refresh map[string]refreshRecord
}

func NewTokenManager(secret []byte, accessTTL time.Duration) *TokenManager {
	if accessTTL == 0 {
		accessTTL = defaultAccessTTL
	}
	return &TokenManager{
		key:        secret,
		accessTTL:  accessTTL,
		refreshTTL: defaultRefreshTTL,
		refresh:    make(map[string]refreshRecord),
	}
}

// IssuePair mints a signed access token and a random refresh token for userID.
func (m *TokenManager) IssuePair(userID string) (models.TokenPair, error) {
	var pair models.TokenPair
	now := time.Now().Truncate(time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
		UserID: userID,
	})
	access, err := token.SignedString(m.key)
	if err != nil {
		return pair, fmt.Errorf("sign access token: %w", err)
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return pair, fmt.Errorf("generate refresh token: %w", err)
	}
	refresh := hex.EncodeToString(b)

	m.mu.Lock()
	m.refresh[refresh] = refreshRecord{userID: userID, expiresAt: now.Add(m.refreshTTL)}
	m.mu.Unlock()

	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a known refresh token for a fresh access token.
func (m *TokenManager) Refresh(refresh string) (string, error) {
	m.mu.Lock()
	rec, ok := m.refresh[refresh]
	m.mu.Unlock()

	if !ok {
		return "", common.ErrInvalidToken
	}
	if time.Now().After(rec.expiresAt) {
		m.Revoke(refresh)
		return "", common.ErrRefreshTokenExpired
	}

	now := time.Now().Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
		UserID: rec.userID,
	})
	access, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return access, nil
}

// Revoke invalidates a refresh token (logout).
func (m *TokenManager) Revoke(refresh string) {
	m.mu.Lock()
	delete(m.refresh, refresh)
	m.mu.Unlock()
}

// ParseAccess validates an access token and returns the user id it carries.
func (m *TokenManager) ParseAccess(access string) (string, error) {
	claims := &accessClaims{}

	token, err := jwt.ParseWithClaims(access, claims, func(t *jwt.Token) (any, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}
	if !token.Valid {
		return "", common.ErrInvalidToken
	}
	return claims.UserID, nil
}
