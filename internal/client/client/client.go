package client

import (
	"context"

	"github.com/akarpov87/authkeeper/internal/client/models"
)

type Client interface {
	Close() error
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	RestoreSession(ctx context.Context) error
	IsLoggedIn() bool
	User() *models.User
}
