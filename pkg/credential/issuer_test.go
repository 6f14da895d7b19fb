package credential

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-token/pkg/authz"
	"github.com/tendant/simple-token/pkg/client"
	"github.com/tendant/simple-token/pkg/clock"
	"github.com/tendant/simple-token/pkg/config"
	tokenerrors "github.com/tendant/simple-token/pkg/errors"
	"github.com/tendant/simple-token/pkg/services"
	"github.com/tendant/simple-token/pkg/settings"
)

type countingRecorder struct {
	issued map[bool]int
	swept  map[Reason]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{issued: map[bool]int{}, swept: map[Reason]int{}}
}

func (r *countingRecorder) TokenIssued(_ string, reused bool) { r.issued[reused]++ }
func (r *countingRecorder) TokenSwept(reason Reason)          { r.swept[reason]++ }

type denyAll struct{}

func (denyAll) Require(_ context.Context, capability string, _ int64) error {
	return tokenerrors.MissingCapability(capability)
}

type fixture struct {
	repo     *InMemRepository
	services *services.InMemRepository
	clock    *clock.Fixed
	recorder *countingRecorder
}

func newFixture() *fixture {
	svc := services.NewInMemRepository()
	svc.Add(services.Service{ID: 7, Shortname: "fake WS", Name: "Fake WS", Enabled: true})
	svc.Add(services.Service{ID: 8, Shortname: "disabled", Name: "Disabled"})
	return &fixture{
		repo:     NewInMemRepository(),
		services: svc,
		clock:    clock.NewFixed(now),
		recorder: newCountingRecorder(),
	}
}

func (f *fixture) issuer(enabled string, lifetime time.Duration, opts ...Option) *Issuer {
	catalog := services.NewCatalog(f.services, settings.Snapshot{Services: config.ParseList(enabled)})
	opts = append([]Option{WithClock(f.clock), WithRecorder(f.recorder)}, opts...)
	return NewIssuer(authz.AllowAll{}, catalog, f.repo, lifetime, opts...)
}

func TestIssue_MintsPermanentToken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.issuer("fake WS", 0).Issue(ctx, 5, "fake WS")
	require.NoError(t, err)

	assert.Len(t, res.Token, 32)
	assert.Nil(t, res.ExpiresAt())
	assert.False(t, res.Reused)

	stored := f.repo.All()
	require.Len(t, stored, 1)
	assert.Equal(t, int64(5), stored[0].UserID)
	assert.Equal(t, int64(7), stored[0].ServiceID)
	assert.Equal(t, TypePermanent, stored[0].Type)
	assert.True(t, stored[0].ValidUntil.IsZero())
	assert.Equal(t, now, stored[0].CreatedAt)
	assert.Equal(t, 1, f.recorder.issued[false])
}

func TestIssue_ReuseIsIdempotent(t *testing.T) {
	f := newFixture()
	issuer := f.issuer("fake WS", time.Hour)
	ctx := context.Background()

	first, err := issuer.Issue(ctx, 5, "fake WS")
	require.NoError(t, err)
	require.NotNil(t, first.ExpiresAt())
	assert.Equal(t, now.Add(time.Hour), *first.ExpiresAt())

	f.clock.Advance(10 * time.Minute)
	second, err := issuer.Issue(ctx, 5, "fake WS")
	require.NoError(t, err)
	third, err := issuer.Issue(ctx, 5, "fake WS")
	require.NoError(t, err)

	assert.Equal(t, first.Token, second.Token)
	assert.Equal(t, first.ValidUntil, second.ValidUntil)
	assert.Equal(t, first.Token, third.Token)
	assert.True(t, second.Reused)
	assert.Len(t, f.repo.All(), 1)
	assert.Equal(t, 2, f.recorder.issued[true])
}

func TestIssue_LifetimeTighteningForcesReissue(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	old, err := f.issuer("fake WS", 0).Issue(ctx, 5, "fake WS")
	require.NoError(t, err)
	assert.Nil(t, old.ExpiresAt())

	again, err := f.issuer("fake WS", 0).Issue(ctx, 5, "fake WS")
	require.NoError(t, err)
	assert.Equal(t, old.Token, again.Token)

	f.clock.Advance(2 * time.Second)
	fresh, err := f.issuer("fake WS", time.Second).Issue(ctx, 5, "fake WS")
	require.NoError(t, err)

	assert.NotEqual(t, old.Token, fresh.Token)
	require.NotNil(t, fresh.ExpiresAt())
	assert.Equal(t, now.Add(3*time.Second), *fresh.ExpiresAt())
	assert.Equal(t, 1, f.recorder.swept[ReasonLifetimeTightened])

	stored := f.repo.All()
	require.Len(t, stored, 1)
	assert.Equal(t, fresh.Token, stored[0].Token)
	assert.Equal(t, fresh.ValidUntil, stored[0].ValidUntil)
}

func TestIssue_ExpiredTokenIsReplaced(t *testing.T) {
	f := newFixture()
	issuer := f.issuer("fake WS", time.Minute)
	ctx := context.Background()

	first, err := issuer.Issue(ctx, 5, "fake WS")
	require.NoError(t, err)

	f.clock.Advance(time.Minute + time.Second)
	second, err := issuer.Issue(ctx, 5, "fake WS")
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.False(t, second.Reused)
	assert.Equal(t, 1, f.recorder.swept[ReasonExpired])
}

func TestIssue_ExistingTokenWithoutExpiry(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	existing, err := f.repo.Create(ctx, Credential{Token: "existing-token-without-expiry-00", UserID: 5, ServiceID: 7, CreatedAt: now.Add(-time.Hour)})
	require.NoError(t, err)

	res, err := f.issuer("fake WS", 0).Issue(ctx, 5, "fake WS")
	require.NoError(t, err)
	assert.Equal(t, existing.Token, res.Token)
	assert.Nil(t, res.ExpiresAt())
}

func TestIssue_PicksMostRecentSurvivor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for i, offset := range []time.Duration{-3 * time.Hour, -2 * time.Hour, -time.Hour} {
		_, err := f.repo.Create(ctx, Credential{Token: fmt.Sprintf("token-%d", i), UserID: 5, ServiceID: 7, CreatedAt: now.Add(offset)})
		require.NoError(t, err)
	}
	_, err := f.repo.Create(ctx, Credential{Token: "bound", UserID: 5, ServiceID: 7, SID: "sess", CreatedAt: now})
	require.NoError(t, err)

	res, err := f.issuer("fake WS", 0).Issue(ctx, 5, "fake WS")
	require.NoError(t, err)
	assert.Equal(t, "token-2", res.Token)
	assert.Len(t, f.repo.All(), 3)
}

func TestIssue_IPRestriction(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.repo.Create(ctx, Credential{Token: "office-only", UserID: 5, ServiceID: 7, IPRestriction: "10.0.0.0/8", CreatedAt: now})
	require.NoError(t, err)

	res, err := f.issuer("fake WS", 0).Issue(WithRemoteAddr(ctx, "10.2.3.4"), 5, "fake WS")
	require.NoError(t, err)
	assert.Equal(t, "office-only", res.Token)

	res, err = f.issuer("fake WS", 0).Issue(WithRemoteAddr(ctx, "203.0.113.9"), 5, "fake WS")
	require.NoError(t, err)
	assert.NotEqual(t, "office-only", res.Token)
	assert.Equal(t, 1, f.recorder.swept[ReasonIPMismatch])
}

func TestIssue_ServiceUnavailable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []struct {
		name      string
		enabled   string
		shortname string
	}{
		{"not enabled", "other", "fake WS"},
		{"enabled but not registered", "fake WS,ghost", "ghost"},
		{"leading whitespace", "fake WS", " fake WS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.issuer(tt.enabled, 0).Issue(ctx, 5, tt.shortname)
			require.Error(t, err)
			assert.True(t, tokenerrors.IsCode(err, tokenerrors.ErrCodeServiceUnavailable))
			assert.Contains(t, err.Error(), fmt.Sprintf("Service is not available! (%s)", tt.shortname))
		})
	}
	assert.Empty(t, f.repo.All())
}

func TestIssue_MissingCapability(t *testing.T) {
	f := newFixture()
	catalog := services.NewCatalog(f.services, settings.Snapshot{Services: []string{"fake WS"}})

	_, err := NewIssuer(denyAll{}, catalog, f.repo, 0).Issue(context.Background(), 5, "fake WS")
	assert.True(t, tokenerrors.IsCode(err, tokenerrors.ErrCodeMissingCapability))
	assert.Empty(t, f.repo.All())
}

func TestIssue_RecordsCreator(t *testing.T) {
	f := newFixture()
	ctx := client.WithAuthUser(context.Background(), &client.AuthUser{UserId: "2"})

	_, err := f.issuer("fake WS", 0).Issue(ctx, 5, "fake WS")
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.repo.All()[0].CreatorID)
}

func TestIssue_GeneratorError(t *testing.T) {
	f := newFixture()
	gen := func() (string, error) { return "", errors.New("entropy exhausted") }

	_, err := f.issuer("fake WS", 0, WithGenerator(gen)).Issue(context.Background(), 5, "fake WS")
	assert.True(t, tokenerrors.IsCode(err, tokenerrors.ErrCodeInternal))
	assert.ErrorContains(t, err, "entropy exhausted")
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.Regexp(t, "^[0-9a-f]{32}$", a)
	assert.NotEqual(t, a, b)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "abcdef...", Redact("abcdef0123456789"))
	assert.Equal(t, "***", Redact("abc"))
}
