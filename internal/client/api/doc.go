// Package api contains the authenticated HTTP client every SalonDesk
// feature talks to the backend through.
//
// # Overview
//
// The package provides:
//  1. A Client with JSON verbs (Get/Post/Put/Patch/Delete) and multipart
//     Upload over a pooled transport with a fixed per-call timeout.
//  2. A request interceptor that resolves credentials strictly before any
//     bytes hit the wire: auth endpoints pass untouched, a missing token
//     aborts the call and sends the user to login, an expired token is
//     transparently renewed through the session's single-flight refresh.
//  3. A response interceptor that recovers from a single 401 by refreshing
//     and replaying the original request exactly once, and that never
//     refreshes when the refresh endpoint itself is the one rejecting.
//  4. A closed error set produced at the transport boundary:
//     ErrNotAuthenticated, ErrSessionExpired, NetworkError, HTTPError.
//     No raw transport error ever reaches feature code.
//
// Recoverable conditions (expired access token, one 401) are invisible to
// callers. Unrecoverable ones surface as an error after the logout flow has
// already run; callers should assume the user is being navigated away.
package api
