// Package users declares the server-side repository contract for account
// lookup. The authentication service only ever reads users; account
// creation is handled by the seed utility.
package users

import (
	"context"

	"github.com/akarpov87/authkeeper/internal/server/models"
)

// Repository defines read operations over the users table.
type Repository interface {
	// FindByEmail returns the user with the given email, or
	// common.ErrorNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID returns the user with the given id, or common.ErrorNotFound
	// when absent.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// Create inserts a new user row and returns it with the generated id.
	Create(ctx context.Context, user *models.User) (*models.User, error)
}
