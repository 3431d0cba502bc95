package client

import (
	"context"
	"database/sql"

	"github.com/akarpov87/authkeeper/internal/client/migrations"
	"github.com/akarpov87/authkeeper/internal/client/repositories/tokens"
	"github.com/pressly/goose/v3"
)

type Repositories struct {
	Tokens tokens.Repository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	// Set the database dialect
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	repos := &Repositories{
		Tokens: tokens.NewSQLiteRepository(db),
	}
	return repos, nil
}
