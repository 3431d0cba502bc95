// Package cli provides the interactive AuthKeeper command-line client.
//
// It wires configuration, local session storage, the API client, and an
// interactive REPL. Typical flow: restore the previous session from the local
// database, prompt for credentials when needed, and execute user commands.
//
// Key features:
//   - Login / Logout
//   - Me: show the authenticated user's profile
//   - Refresh: force a token rotation
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
