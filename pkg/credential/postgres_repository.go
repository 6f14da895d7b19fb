package credential

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tendant/simple-token/pkg/utils"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresRepository stores credentials in external_tokens
type PostgresRepository struct {
	db DBTX
}

func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const credentialColumns = `id, token, token_type, user_id, service_id, sid, ip_restriction, valid_until, creator_id, created_at`

func scanCredential(row pgx.Row) (Credential, error) {
	var (
		c          Credential
		sid, ip    sql.NullString
		validUntil sql.NullTime
		creatorID  sql.NullInt64
	)
	err := row.Scan(
		&c.ID,
		&c.Token,
		&c.Type,
		&c.UserID,
		&c.ServiceID,
		&sid,
		&ip,
		&validUntil,
		&creatorID,
		&c.CreatedAt,
	)
	if err != nil {
		return Credential{}, err
	}
	c.SID = sid.String
	c.IPRestriction = ip.String
	if validUntil.Valid {
		c.ValidUntil = validUntil.Time
	}
	c.CreatorID = creatorID.Int64
	return c, nil
}

func (r *PostgresRepository) ListPermanent(ctx context.Context, userID, serviceID int64) ([]Credential, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+credentialColumns+`
		FROM external_tokens
		WHERE user_id = $1 AND service_id = $2 AND token_type = $3
		ORDER BY created_at ASC, id ASC
	`, userID, serviceID, TypePermanent)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var result []Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credentials: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM external_tokens WHERE token = $1 AND token_type = $2`, token, TypePermanent)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, c Credential) (Credential, error) {
	if c.Type == "" {
		c.Type = TypePermanent
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO external_tokens (
			token, token_type, user_id, service_id, sid, ip_restriction, valid_until, creator_id, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING `+credentialColumns,
		c.Token,
		c.Type,
		c.UserID,
		c.ServiceID,
		utils.ToNullString(c.SID),
		utils.ToNullString(c.IPRestriction),
		utils.ToNullTime(c.ValidUntil),
		utils.ToNullInt64(c.CreatorID),
		c.CreatedAt,
	)

	created, err := scanCredential(row)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to create credential: %w", err)
	}
	return created, nil
}
