package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
)

type idempotencyKey struct {
	seekerID int64
	key      string
}

// CareRequestRepository implements ports.CareRequestRepository in memory.
type CareRequestRepository struct {
	mu          sync.RWMutex
	nextID      int64
	byID        map[int64]*domain.CareRequest
	idempotency map[idempotencyKey]int64
}

func NewCareRequestRepository() *CareRequestRepository {
	return &CareRequestRepository{
		byID:        make(map[int64]*domain.CareRequest),
		idempotency: make(map[idempotencyKey]int64),
	}
}

// Create assigns the next id and stores a copy of req. An empty status
// defaults to PENDING.
func (r *CareRequestRepository) Create(_ context.Context, req *domain.CareRequest) (*domain.CareRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.IdempotencyKey != "" {
		k := idempotencyKey{seekerID: req.SeekerID, key: req.IdempotencyKey}
		if _, ok := r.idempotency[k]; ok {
			return nil, domain.ErrDuplicateRequest
		}
	}

	r.nextID++
	stored := req.Clone()
	stored.ID = r.nextID
	if stored.Status == "" {
		stored.Status = domain.StatusPending
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = stored.CreatedAt

	r.byID[stored.ID] = stored
	if stored.IdempotencyKey != "" {
		r.idempotency[idempotencyKey{seekerID: stored.SeekerID, key: stored.IdempotencyKey}] = stored.ID
	}
	return stored.Clone(), nil
}

func (r *CareRequestRepository) FindByID(_ context.Context, id int64) (*domain.CareRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCareRequestNotFound
	}
	return req.Clone(), nil
}

func (r *CareRequestRepository) FindByIdempotencyKey(_ context.Context, seekerID int64, key string) (*domain.CareRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.idempotency[idempotencyKey{seekerID: seekerID, key: key}]
	if !ok {
		return nil, domain.ErrCareRequestNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *CareRequestRepository) ListBySeeker(_ context.Context, seekerID int64) ([]*domain.CareRequest, error) {
	return r.list(func(req *domain.CareRequest) bool { return req.SeekerID == seekerID }), nil
}

func (r *CareRequestRepository) ListByProvider(_ context.Context, providerID int64) ([]*domain.CareRequest, error) {
	return r.list(func(req *domain.CareRequest) bool { return req.IsAssignedTo(providerID) }), nil
}

func (r *CareRequestRepository) list(match func(*domain.CareRequest) bool) []*domain.CareRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.CareRequest, 0)
	for _, req := range r.byID {
		if match(req) {
			out = append(out, req.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *CareRequestRepository) Update(_ context.Context, id int64, patch domain.CareRequestPatch) (*domain.CareRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCareRequestNotFound
	}
	patch.Apply(req, time.Now().UTC())
	return req.Clone(), nil
}

func (r *CareRequestRepository) UpdateIfStatus(_ context.Context, id int64, expected domain.RequestStatus, patch domain.CareRequestPatch) (*domain.CareRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCareRequestNotFound
	}
	if req.Status != expected {
		return nil, domain.ErrStatusChanged
	}
	patch.Apply(req, time.Now().UTC())
	return req.Clone(), nil
}
