package credential

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestStaleReason(t *testing.T) {
	policy := Policy{Now: now, RemoteAddr: "10.0.0.5"}

	tests := []struct {
		name     string
		c        Credential
		lifetime time.Duration
		reason   Reason
		stale    bool
	}{
		{"plain token", Credential{}, 0, "", false},
		{"session bound", Credential{SID: "abc"}, 0, ReasonSessionBound, true},
		{"no expiry under lifetime", Credential{}, time.Hour, ReasonLifetimeTightened, true},
		{"expired", Credential{ValidUntil: now.Add(-time.Second)}, time.Hour, ReasonExpired, true},
		{"expires now", Credential{ValidUntil: now}, time.Hour, "", false},
		{"future expiry", Credential{ValidUntil: now.Add(time.Hour)}, 0, "", false},
		{"ip match", Credential{IPRestriction: "10.0.0.0/24"}, 0, "", false},
		{"ip mismatch", Credential{IPRestriction: "192.168.0.1"}, 0, ReasonIPMismatch, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := policy
			p.Lifetime = tt.lifetime
			reason, stale := StaleReason(tt.c, p)
			assert.Equal(t, tt.stale, stale)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestSweepAndSelect(t *testing.T) {
	repo := NewInMemRepository()
	ctx := context.Background()

	add := func(token string, offset time.Duration, mutate func(*Credential)) Credential {
		c := Credential{Token: token, UserID: 1, ServiceID: 7, Type: TypePermanent, CreatedAt: now.Add(offset)}
		if mutate != nil {
			mutate(&c)
		}
		created, err := repo.Create(ctx, c)
		require.NoError(t, err)
		return created
	}

	add("oldest-valid", -4*time.Hour, nil)
	add("session", -3*time.Hour, func(c *Credential) { c.SID = "s1" })
	add("newest-valid", -2*time.Hour, nil)
	add("expired", -1*time.Hour, func(c *Credential) { c.ValidUntil = now.Add(-time.Minute) })

	candidates, err := repo.ListPermanent(ctx, 1, 7)
	require.NoError(t, err)

	selected, swept, err := SweepAndSelect(ctx, repo, candidates, Policy{Now: now})
	require.NoError(t, err)
	require.NotNil(t, selected)
	assert.Equal(t, "newest-valid", selected.Token)

	require.Len(t, swept, 2)
	assert.Equal(t, ReasonSessionBound, swept[0].Reason)
	assert.Equal(t, ReasonExpired, swept[1].Reason)

	remaining, err := repo.ListPermanent(ctx, 1, 7)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestSweepAndSelect_NoSurvivors(t *testing.T) {
	repo := NewInMemRepository()
	ctx := context.Background()
	_, err := repo.Create(ctx, Credential{Token: "t1", UserID: 1, ServiceID: 7, CreatedAt: now})
	require.NoError(t, err)

	candidates, _ := repo.ListPermanent(ctx, 1, 7)
	selected, swept, err := SweepAndSelect(ctx, repo, candidates, Policy{Now: now, Lifetime: time.Minute})
	require.NoError(t, err)
	assert.Nil(t, selected)
	assert.Len(t, swept, 1)
	assert.Empty(t, repo.All())
}

type failingDeleteRepo struct {
	*InMemRepository
}

func (failingDeleteRepo) Delete(context.Context, string) error {
	return errors.New("delete refused")
}

func TestSweepAndSelect_DeleteError(t *testing.T) {
	repo := failingDeleteRepo{NewInMemRepository()}
	candidates := []Credential{{Token: "t1", SID: "s"}}

	selected, _, err := SweepAndSelect(context.Background(), repo, candidates, Policy{Now: now})
	assert.Nil(t, selected)
	assert.ErrorContains(t, err, "delete refused")
}
