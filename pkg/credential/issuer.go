package credential

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/tendant/simple-token/pkg/authz"
	"github.com/tendant/simple-token/pkg/client"
	"github.com/tendant/simple-token/pkg/clock"
	"github.com/tendant/simple-token/pkg/errors"
	"github.com/tendant/simple-token/pkg/services"
)

// Recorder observes issuance outcomes
type Recorder interface {
	TokenIssued(service string, reused bool)
	TokenSwept(reason Reason)
}

type nopRecorder struct{}

func (nopRecorder) TokenIssued(string, bool) {}
func (nopRecorder) TokenSwept(Reason)        {}

// Issuer hands out tokens for one settings snapshot
type Issuer struct {
	authorizer authz.Authorizer
	services   *services.Catalog
	repo       Repository
	clock      clock.Clock
	lifetime   time.Duration
	recorder   Recorder
	generate   func() (string, error)
}

type Option func(*Issuer)

// WithRecorder reports issuance to r
func WithRecorder(r Recorder) Option {
	return func(i *Issuer) {
		if r != nil {
			i.recorder = r
		}
	}
}

// WithClock replaces the system clock
func WithClock(c clock.Clock) Option {
	return func(i *Issuer) {
		i.clock = c
	}
}

// WithGenerator replaces the random token generator
func WithGenerator(gen func() (string, error)) Option {
	return func(i *Issuer) {
		i.generate = gen
	}
}

// NewIssuer creates an issuer. A zero lifetime mints tokens that never expire.
func NewIssuer(authorizer authz.Authorizer, catalog *services.Catalog, repo Repository, lifetime time.Duration, opts ...Option) *Issuer {
	i := &Issuer{
		authorizer: authorizer,
		services:   catalog,
		repo:       repo,
		clock:      clock.System{},
		lifetime:   lifetime,
		recorder:   nopRecorder{},
		generate:   GenerateToken,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue returns a token for identityID on the service named shortname.
// An existing valid token is returned unchanged; otherwise a new one is minted.
func (i *Issuer) Issue(ctx context.Context, identityID int64, shortname string) (Result, error) {
	if err := i.authorizer.Require(ctx, authz.CapabilityGenerateToken, identityID); err != nil {
		return Result{}, err
	}

	if !i.services.IsServiceEnabled(shortname) {
		slog.Info("service not enabled", "service", shortname)
		return Result{}, errors.ServiceUnavailable(shortname)
	}

	service, err := i.services.ServiceByShortname(ctx, shortname)
	if err != nil {
		slog.Error("failed to look up service", "service", shortname, "error", err)
		return Result{}, errors.InternalWrap(err, "failed to look up service")
	}
	if service == nil {
		slog.Info("enabled service is not registered", "service", shortname)
		return Result{}, errors.ServiceUnavailable(shortname)
	}

	candidates, err := i.repo.ListPermanent(ctx, identityID, service.ID)
	if err != nil {
		slog.Error("failed to list credentials", "userID", identityID, "serviceID", service.ID, "error", err)
		return Result{}, errors.InternalWrap(err, "failed to list credentials")
	}

	now := i.clock.Now()
	selected, swept, err := SweepAndSelect(ctx, i.repo, candidates, Policy{
		Now:        now,
		Lifetime:   i.lifetime,
		RemoteAddr: RemoteAddr(ctx),
	})
	for _, s := range swept {
		i.recorder.TokenSwept(s.Reason)
	}
	if err != nil {
		slog.Error("credential sweep failed", "userID", identityID, "serviceID", service.ID, "error", err)
		return Result{}, errors.InternalWrap(err, "failed to sweep credentials")
	}

	if selected != nil {
		slog.Info("reusing token", "userID", identityID, "service", shortname, "token", Redact(selected.Token))
		i.recorder.TokenIssued(shortname, true)
		return Result{Token: selected.Token, ValidUntil: selected.ValidUntil, ServiceID: service.ID, Reused: true}, nil
	}

	token, err := i.generate()
	if err != nil {
		return Result{}, errors.InternalWrap(err, "failed to generate token")
	}

	c := Credential{
		Token:     token,
		UserID:    identityID,
		ServiceID: service.ID,
		Type:      TypePermanent,
		CreatorID: creatorID(ctx),
		CreatedAt: now,
	}
	if i.lifetime > 0 {
		c.ValidUntil = now.Add(i.lifetime)
	}

	created, err := i.repo.Create(ctx, c)
	if err != nil {
		slog.Error("failed to store credential", "userID", identityID, "serviceID", service.ID, "error", err)
		return Result{}, errors.InternalWrap(err, "failed to store credential")
	}

	slog.Info("minted token", "userID", identityID, "service", shortname, "token", Redact(created.Token), "validUntil", created.ValidUntil)
	i.recorder.TokenIssued(shortname, false)
	return Result{Token: created.Token, ValidUntil: created.ValidUntil, ServiceID: service.ID}, nil
}

// creatorID is the numeric id of the JWT caller, 0 for system callers
func creatorID(ctx context.Context) int64 {
	caller, ok := client.GetAuthUser(ctx)
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(caller.UserId, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// GenerateToken returns 32 random hex characters
func GenerateToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
