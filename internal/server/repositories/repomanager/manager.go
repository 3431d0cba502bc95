// Package repomanager provides a factory over the server repositories so
// services can obtain them bound either to the pooled connection or to an
// open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/akarpov87/authkeeper/internal/dbx"
	"github.com/akarpov87/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/akarpov87/authkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
