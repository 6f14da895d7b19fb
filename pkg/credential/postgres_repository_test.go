package credential

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-token/internal/pgtest"
	"github.com/tendant/simple-token/pkg/authz"
	"github.com/tendant/simple-token/pkg/config"
	"github.com/tendant/simple-token/pkg/services"
	"github.com/tendant/simple-token/pkg/settings"
)

func TestPostgresRepository(t *testing.T) {
	pool := pgtest.Start(t)
	pgtest.Exec(t, pool, `
		INSERT INTO users (id, username, auth) VALUES (5, 'bob', 'manual');
		INSERT INTO external_services (id, name, shortname, enabled) VALUES (7, 'Fake', 'fake WS', TRUE);
	`)

	repo := NewPostgresRepository(pool)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, Credential{
		Token:         "first-token",
		UserID:        5,
		ServiceID:     7,
		IPRestriction: "10.0.0.0/8",
		ValidUntil:    base.Add(time.Hour),
		CreatorID:     5,
		CreatedAt:     base,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, TypePermanent, created.Type)
	assert.True(t, created.ValidUntil.Equal(base.Add(time.Hour)))

	_, err = repo.Create(ctx, Credential{Token: "second-token", UserID: 5, ServiceID: 7, CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	_, err = repo.Create(ctx, Credential{Token: "session-token", UserID: 5, ServiceID: 7, Type: "embedded", SID: "s", CreatedAt: base})
	require.NoError(t, err)

	list, err := repo.ListPermanent(ctx, 5, 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first-token", list[0].Token)
	assert.Equal(t, "10.0.0.0/8", list[0].IPRestriction)
	assert.Equal(t, int64(5), list[0].CreatorID)
	assert.Equal(t, "second-token", list[1].Token)
	assert.True(t, list[1].ValidUntil.IsZero())
	assert.Empty(t, list[1].SID)

	require.NoError(t, repo.Delete(ctx, "first-token"))
	require.NoError(t, repo.Delete(ctx, "session-token"))

	list, err = repo.ListPermanent(ctx, 5, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second-token", list[0].Token)

	var embedded int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM external_tokens WHERE token_type = 'embedded'`).Scan(&embedded))
	assert.Equal(t, 1, embedded)
}

func TestPostgresRepository_Issue(t *testing.T) {
	pool := pgtest.Start(t)
	pgtest.Exec(t, pool, `
		INSERT INTO users (id, username, auth) VALUES (5, 'bob', 'manual');
		INSERT INTO external_services (id, name, shortname, enabled) VALUES (7, 'Fake', 'fake WS', TRUE);
	`)

	catalog := services.NewCatalog(services.NewPostgresRepository(pool), settings.Snapshot{Services: config.ParseList("fake WS")})
	issuer := NewIssuer(authz.AllowAll{}, catalog, NewPostgresRepository(pool), 0)
	ctx := context.Background()

	first, err := issuer.Issue(ctx, 5, "fake WS")
	require.NoError(t, err)
	second, err := issuer.Issue(ctx, 5, "fake WS")
	require.NoError(t, err)

	assert.Equal(t, first.Token, second.Token)
	assert.Nil(t, second.ExpiresAt())
}
