// Package identity resolves a (field, value) pair to exactly one identity.
package identity

import (
	"context"
	"strconv"

	"github.com/tendant/simple-token/pkg/fields"
)

// Identity is a user from the identity store
type Identity struct {
	ID       int64
	Username string
	Email    string
	IDNumber string
	Auth     string
	Deleted  bool
	// Profile holds custom field values keyed by shortname
	Profile map[string]string
}

// Query selects identities that are not deleted, use one of AuthMethods and
// whose Field equals Value under the field's comparison rule.
type Query struct {
	Field       fields.Key
	Value       string
	AuthMethods []string
}

// NumericID parses Value for id lookups. A non-numeric value matches nothing.
func (q Query) NumericID() (int64, bool) {
	id, err := strconv.ParseInt(q.Value, 10, 64)
	return id, err == nil
}

// Repository reads identities and custom profile data
type Repository interface {
	// FindMatching returns the matching identities. Implementations may stop after two.
	FindMatching(ctx context.Context, q Query) ([]Identity, error)
	LoadProfile(ctx context.Context, userID int64) (map[string]string, error)
	ListProfileFields(ctx context.Context) ([]fields.ProfileField, error)
}
