package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
)

// ProviderStatusRepository implements ports.ProviderStatusRepository in memory.
type ProviderStatusRepository struct {
	mu       sync.RWMutex
	byUserID map[int64]*domain.ProviderStatus
}

func NewProviderStatusRepository() *ProviderStatusRepository {
	return &ProviderStatusRepository{byUserID: make(map[int64]*domain.ProviderStatus)}
}

func (r *ProviderStatusRepository) FindByUserID(_ context.Context, userID int64) (*domain.ProviderStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byUserID[userID]
	if !ok {
		return nil, domain.ErrProviderStatusNotFound
	}
	return s.Clone(), nil
}

func (r *ProviderStatusRepository) Upsert(_ context.Context, userID int64, patch domain.ProviderStatusPatch) (*domain.ProviderStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byUserID[userID]
	if !ok {
		s = &domain.ProviderStatus{UserID: userID}
		r.byUserID[userID] = s
	}
	patch.Apply(s, time.Now().UTC())
	return s.Clone(), nil
}

func (r *ProviderStatusRepository) ListOnline(_ context.Context) ([]*domain.ProviderStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.ProviderStatus, 0)
	for _, s := range r.byUserID {
		if s.IsOnline {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
