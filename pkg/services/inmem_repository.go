package services

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemRepository keeps services in memory
type InMemRepository struct {
	mu       sync.RWMutex
	services []Service
	nextID   int64
}

func NewInMemRepository() *InMemRepository {
	return &InMemRepository{nextID: 1}
}

// Add registers a service, assigning an ID when none is set
func (r *InMemRepository) Add(s Service) Service {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == 0 {
		s.ID = r.nextID
	}
	if s.ID >= r.nextID {
		r.nextID = s.ID + 1
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
		s.UpdatedAt = s.CreatedAt
	}
	r.services = append(r.services, s)
	return s
}

func (r *InMemRepository) ListServices(ctx context.Context) ([]Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Service, len(r.services))
	copy(result, r.services)
	sort.SliceStable(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
