package tokens

import (
	"context"
)

// Repository persists session tokens between CLI runs, keyed by name.
// Get returns ("", nil) when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
