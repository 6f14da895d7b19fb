package token

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tendant/simple-token/pkg/credential"
	"github.com/tendant/simple-token/pkg/identity"
	"github.com/tendant/simple-token/pkg/services"
	"github.com/tendant/simple-token/pkg/settings"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresStores backs every store with db. Settings missing from the
// token_settings table are read from defaults.
func PostgresStores(db DBTX, defaults map[string]string) Stores {
	return Stores{
		Settings:    settings.Layered{settings.NewPostgresStore(db), settings.MapStore(defaults)},
		Identities:  identity.NewPostgresRepository(db),
		Services:    services.NewPostgresRepository(db),
		Credentials: credential.NewPostgresRepository(db),
	}
}
