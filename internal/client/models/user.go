// Package models defines the client-side data shapes exchanged with the
// backend.
package models

// User is the authenticated account as the backend reports it.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
