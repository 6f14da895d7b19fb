package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresRepository reads the external_services table
type PostgresRepository struct {
	db DBTX
}

func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListServices(ctx context.Context) ([]Service, error) {
	query := `
		SELECT id, COALESCE(shortname, ''), name, enabled,
			COALESCE(required_capability, ''), restricted_users, created_at, updated_at
		FROM external_services
		WHERE shortname IS NOT NULL AND shortname <> ''
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var result []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(
			&s.ID,
			&s.Shortname,
			&s.Name,
			&s.Enabled,
			&s.RequiredCapability,
			&s.RestrictedUsers,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate services: %w", err)
	}
	return result, nil
}
