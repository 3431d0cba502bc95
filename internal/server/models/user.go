// Package models defines server-side rows persisted by the repositories.
package models

import "time"

// User is an account row. PasswordHash holds a bcrypt hash; the plaintext
// password never reaches storage.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
