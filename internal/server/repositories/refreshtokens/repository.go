// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/akarpov87/authkeeper/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// refresh tokens. Rotation (delete old, insert new) is expressed by the
// caller; the store only provides single-row operations.
type Repository interface {
	// Create inserts a new refresh-token row.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Find looks up a row by its exact token string and returns it together
	// with the owning user id. Returns common.ErrorNotFound when absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteByID removes a row by its primary key.
	DeleteByID(ctx context.Context, id string) error

	// DeleteByToken removes a row by its token string. Deleting a
	// non-existent token is not an error.
	DeleteByToken(ctx context.Context, token string) error

	// DeleteExpiredBefore removes every row whose expiry is before t and
	// reports how many rows were removed.
	DeleteExpiredBefore(ctx context.Context, t time.Time) (int64, error)
}
