package identity

import (
	"context"
	"log/slog"

	"github.com/tendant/simple-token/pkg/errors"
	"github.com/tendant/simple-token/pkg/fields"
)

// Resolver maps a caller-supplied field and value to one identity
type Resolver struct {
	catalog *fields.Catalog
	repo    Repository
}

func NewResolver(catalog *fields.Catalog, repo Repository) *Resolver {
	return &Resolver{catalog: catalog, repo: repo}
}

// Resolve returns the single identity matching field=value, or nil when none does.
// It fails with INVALID_FIELD when field is not enabled and AMBIGUOUS_MATCH when
// more than one identity matches.
func (r *Resolver) Resolve(ctx context.Context, field, value string) (*Identity, error) {
	if !r.catalog.IsFieldEnabled(field) {
		return nil, errors.InvalidField(field)
	}

	auths := r.catalog.EnabledAuthMethods()
	if len(auths) == 0 {
		slog.Debug("no auth methods enabled, nothing resolves", "field", field)
		return nil, nil
	}

	matches, err := r.repo.FindMatching(ctx, Query{
		Field:       fields.ParseKey(field),
		Value:       value,
		AuthMethods: auths,
	})
	if err != nil {
		slog.Error("identity lookup failed", "field", field, "error", err)
		return nil, errors.InternalWrap(err, "failed to look up identity")
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
	default:
		slog.Warn("identity lookup is ambiguous", "field", field, "matches", len(matches))
		return nil, errors.AmbiguousMatch(field, len(matches))
	}

	found := matches[0]
	profile, err := r.repo.LoadProfile(ctx, found.ID)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to load profile")
	}
	found.Profile = profile

	return &found, nil
}
