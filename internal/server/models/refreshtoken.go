package models

import "time"

// RefreshToken is a persisted refresh-token row. Token is unique across all
// rows; UserID cascades on user deletion. Expires mirrors the expiry embedded
// in the signed token itself (the codec is the source of truth).
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
