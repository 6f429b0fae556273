// Package common contains shared constants and sentinel errors used across
// SalonDesk components.
package common

const (
	// AuthorizationHeader is the HTTP header carrying the bearer access token.
	AuthorizationHeader = "Authorization"

	// BearerPrefix is prepended to the access token in the Authorization header.
	BearerPrefix = "Bearer "

	// RequestIDHeader carries a per-request correlation id on outbound calls.
	RequestIDHeader = "X-Request-ID"

	// AccessTokenKey is the durable-store key (and cookie name) for the access token.
	AccessTokenKey = "auth_token"

	// RefreshTokenKey is the durable-store key for the refresh token.
	RefreshTokenKey = "refresh_token"

	// AuthStateKey is the durable-store key for the cached auth/user state blob.
	// Cleared wholesale on logout so no stale user object survives the session.
	AuthStateKey = "auth-storage"

	// AccessCookieMaxAge is the lifetime, in seconds, of the access-token cookie.
	AccessCookieMaxAge = 86400

	// DefaultUploadField is the multipart form field name for file uploads.
	DefaultUploadField = "file"
)
