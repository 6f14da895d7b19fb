package credential

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// InMemRepository keeps credentials in memory in insertion order
type InMemRepository struct {
	mu          sync.RWMutex
	credentials []Credential
	nextID      int64
}

func NewInMemRepository() *InMemRepository {
	return &InMemRepository{nextID: 1}
}

func (r *InMemRepository) ListPermanent(ctx context.Context, userID, serviceID int64) ([]Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Credential
	for _, c := range r.credentials {
		if c.UserID == userID && c.ServiceID == serviceID && c.Type == TypePermanent {
			result = append(result, c)
		}
	}
	sort.SliceStable(result, func(a, b int) bool { return result[a].CreatedAt.Before(result[b].CreatedAt) })
	return result, nil
}

func (r *InMemRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.credentials[:0]
	for _, c := range r.credentials {
		if c.Token == token && c.Type == TypePermanent {
			continue
		}
		kept = append(kept, c)
	}
	r.credentials = kept
	return nil
}

func (r *InMemRepository) Create(ctx context.Context, c Credential) (Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.credentials {
		if existing.Token == c.Token {
			return Credential{}, fmt.Errorf("token already exists")
		}
	}
	if c.Type == "" {
		c.Type = TypePermanent
	}
	c.ID = r.nextID
	r.nextID++
	r.credentials = append(r.credentials, c)
	return c, nil
}

// All returns every stored credential
func (r *InMemRepository) All() []Credential {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Credential, len(r.credentials))
	copy(result, r.credentials)
	return result
}
