// Package client contains client-side building blocks for AuthKeeper.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) to talk
//     to the AuthKeeper backend: Login, Logout, Refresh, Me, and session
//     restore.
//  2. A concrete HTTP implementation (see HTTPClient) that manages the token
//     pair, transparently refreshes on 401 with a single replay, coalesces
//     concurrent refresh attempts onto one request, and maps HTTP statuses
//     to sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations) for
//     the CLI, wiring an SQLite database and applying embedded goose
//     migrations. The refresh token is persisted there so a session survives
//     process restarts.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrInvalidCredentials,
// ErrLocalDataNotAvailable.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation/timeouts.
package client
