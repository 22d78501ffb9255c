package ports

import (
	"context"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
)

// CareRequestRepository defines persistence operations for care requests.
// Lists are ordered by id ascending.
type CareRequestRepository interface {
	Create(ctx context.Context, r *domain.CareRequest) (*domain.CareRequest, error)
	FindByID(ctx context.Context, id int64) (*domain.CareRequest, error)
	// FindByIdempotencyKey looks up a request previously created by seekerID with key.
	FindByIdempotencyKey(ctx context.Context, seekerID int64, key string) (*domain.CareRequest, error)
	ListBySeeker(ctx context.Context, seekerID int64) ([]*domain.CareRequest, error)
	ListByProvider(ctx context.Context, providerID int64) ([]*domain.CareRequest, error)
	Update(ctx context.Context, id int64, patch domain.CareRequestPatch) (*domain.CareRequest, error)
	// UpdateIfStatus applies patch only if the stored status still equals expected.
	// The comparison and the write are one atomic step; a mismatch yields
	// domain.ErrStatusChanged and leaves the request untouched.
	UpdateIfStatus(ctx context.Context, id int64, expected domain.RequestStatus, patch domain.CareRequestPatch) (*domain.CareRequest, error)
}
