package identity

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/tendant/simple-token/pkg/fields"
)

// InMemRepository keeps identities and profile fields in memory
type InMemRepository struct {
	mu         sync.RWMutex
	identities map[int64]Identity
	fields     []fields.ProfileField
}

func NewInMemRepository() *InMemRepository {
	return &InMemRepository{identities: make(map[int64]Identity)}
}

// AddIdentity stores or replaces an identity
func (r *InMemRepository) AddIdentity(i Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile := make(map[string]string, len(i.Profile))
	for k, v := range i.Profile {
		profile[k] = v
	}
	i.Profile = profile
	r.identities[i.ID] = i
}

// AddProfileField defines a custom profile field
func (r *InMemRepository) AddProfileField(f fields.ProfileField) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fields = append(r.fields, f)
}

func (r *InMemRepository) FindMatching(ctx context.Context, q Query) ([]Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Identity
	for _, i := range r.identities {
		if i.Deleted || !slices.Contains(q.AuthMethods, i.Auth) {
			continue
		}
		if matches(i, q) {
			found := i
			found.Profile = nil
			result = append(result, found)
		}
	}
	sort.Slice(result, func(a, b int) bool { return result[a].ID < result[b].ID })
	return result, nil
}

func matches(i Identity, q Query) bool {
	if name, ok := q.Field.CustomName(); ok {
		value, present := i.Profile[name]
		return present && value == q.Value
	}

	b, _ := q.Field.BuiltIn()
	switch b {
	case fields.ID:
		id, ok := q.NumericID()
		return ok && id == i.ID
	case fields.Username:
		return strings.ToLower(i.Username) == strings.ToLower(q.Value)
	case fields.Email:
		return strings.ToLower(i.Email) == strings.ToLower(q.Value)
	case fields.IDNumber:
		return strings.ToLower(i.IDNumber) == strings.ToLower(q.Value)
	}
	return false
}

func (r *InMemRepository) LoadProfile(ctx context.Context, userID int64) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile := make(map[string]string)
	for k, v := range r.identities[userID].Profile {
		profile[k] = v
	}
	return profile, nil
}

func (r *InMemRepository) ListProfileFields(ctx context.Context) ([]fields.ProfileField, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]fields.ProfileField, len(r.fields))
	copy(result, r.fields)
	sort.SliceStable(result, func(a, b int) bool { return result[a].SortOrder < result[b].SortOrder })
	return result, nil
}
