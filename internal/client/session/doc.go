// Package session owns the client-side authentication state of SalonDesk.
//
// # Overview
//
// The package provides:
//  1. A TokenStore with a single write path that fans out to two storage
//     locations: a durable SQLite key-value table (survives restarts) and an
//     auth_token cookie in the client's cookie jar (visible to server-side
//     middleware). The two locations hold the same access token after every
//     successful write; the refresh token lives in durable storage only.
//  2. An AuthSession with an explicit lifecycle that coordinates the
//     single-flight refresh operation and the logout flow, including the
//     setup-page guard that suppresses the login redirect mid-signup.
//  3. IsExpired, a fail-open expiry check on the JWT exp claim.
//
// # Error Handling
//
// Refresh with no stored refresh token fails fast with
// common.ErrorUnauthorized and has no side effects. Any other refresh
// failure runs the logout flow exactly once before the error reaches the
// callers awaiting the shared operation.
package session
