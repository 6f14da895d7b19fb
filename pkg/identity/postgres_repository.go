package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tendant/simple-token/pkg/fields"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresRepository reads users and profile data from PostgreSQL
type PostgresRepository struct {
	db DBTX
}

func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectUsers = `
	SELECT u.id, u.username, u.email, u.idnumber, u.auth, u.deleted
	FROM users u
`

// builtInColumns must only hold trusted column names, they are spliced into SQL
var builtInColumns = map[fields.BuiltIn]string{
	fields.Username: "u.username",
	fields.Email:    "u.email",
	fields.IDNumber: "u.idnumber",
}

// FindMatching returns at most two identities, enough to detect ambiguity
func (r *PostgresRepository) FindMatching(ctx context.Context, q Query) ([]Identity, error) {
	var (
		query string
		args  []interface{}
	)

	if name, ok := q.Field.CustomName(); ok {
		query = selectUsers + `
			JOIN user_profile_fields f ON f.shortname = $2
			JOIN user_profile_data d ON d.field_id = f.id AND d.user_id = u.id
			WHERE u.deleted = FALSE AND u.auth = ANY($1) AND d.data = $3
			ORDER BY u.id LIMIT 2`
		args = []interface{}{q.AuthMethods, name, q.Value}
	} else {
		b, _ := q.Field.BuiltIn()
		if b == fields.ID {
			id, ok := q.NumericID()
			if !ok {
				return nil, nil
			}
			query = selectUsers + `
				WHERE u.deleted = FALSE AND u.auth = ANY($1) AND u.id = $2
				ORDER BY u.id LIMIT 2`
			args = []interface{}{q.AuthMethods, id}
		} else {
			column, known := builtInColumns[b]
			if !known {
				return nil, fmt.Errorf("unknown built-in field %q", q.Field.String())
			}
			query = selectUsers + `
				WHERE u.deleted = FALSE AND u.auth = ANY($1) AND LOWER(` + column + `) = LOWER($2)
				ORDER BY u.id LIMIT 2`
			args = []interface{}{q.AuthMethods, q.Value}
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var result []Identity
	for rows.Next() {
		var i Identity
		if err := rows.Scan(&i.ID, &i.Username, &i.Email, &i.IDNumber, &i.Auth, &i.Deleted); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		result = append(result, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return result, nil
}

// LoadProfile returns the user's custom field values keyed by shortname
func (r *PostgresRepository) LoadProfile(ctx context.Context, userID int64) (map[string]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT f.shortname, d.data
		FROM user_profile_data d
		JOIN user_profile_fields f ON f.id = d.field_id
		WHERE d.user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	defer rows.Close()

	profile := make(map[string]string)
	for rows.Next() {
		var shortname, data string
		if err := rows.Scan(&shortname, &data); err != nil {
			return nil, fmt.Errorf("failed to scan profile data: %w", err)
		}
		profile[shortname] = data
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profile data: %w", err)
	}
	return profile, nil
}

// ListProfileFields returns every custom field definition in sort order
func (r *PostgresRepository) ListProfileFields(ctx context.Context) ([]fields.ProfileField, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, shortname, name, datatype, force_unique, sort_order
		FROM user_profile_fields
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile fields: %w", err)
	}
	defer rows.Close()

	var result []fields.ProfileField
	for rows.Next() {
		var f fields.ProfileField
		if err := rows.Scan(&f.ID, &f.Shortname, &f.Name, &f.Datatype, &f.ForceUnique, &f.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan profile field: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profile fields: %w", err)
	}
	return result, nil
}
