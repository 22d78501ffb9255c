package ports

import (
	"context"
	"time"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
)

// CreateRequestInput carries all data needed to open a care request.
type CreateRequestInput struct {
	SeekerID        int64
	Description     string
	Location        string
	Coordinates     *domain.Coordinates
	DurationMinutes *int
	ScheduledFor    *time.Time
	IdempotencyKey  string
}

// CreateRequestResult is returned after creating a request.
type CreateRequestResult struct {
	Request *domain.CareRequest
	// AlreadyExisted is true when the Idempotency-Key matched an existing request.
	AlreadyExisted bool
}

// EditRequestInput holds the seeker-editable fields; nil means unchanged.
type EditRequestInput struct {
	Description     *string
	Location        *string
	Coordinates     *domain.Coordinates
	DurationMinutes *int
	ScheduledFor    *time.Time
}

// RequestService drives the care request lifecycle.
type RequestService interface {
	CreateRequest(ctx context.Context, in CreateRequestInput) (*CreateRequestResult, error)
	GetRequest(ctx context.Context, requestID, actorID int64) (*domain.CareRequest, error)
	ListForActor(ctx context.Context, actorID int64) ([]*domain.CareRequest, error)
	EditRequest(ctx context.Context, requestID, actorID int64, in EditRequestInput) (*domain.CareRequest, error)
	MatchProvider(ctx context.Context, requestID, actorID, providerID int64) (*domain.CareRequest, error)
	RespondToMatch(ctx context.Context, requestID, actorID int64, decision domain.MatchDecision) (*domain.CareRequest, error)
	Cancel(ctx context.Context, requestID, actorID int64) (*domain.CareRequest, error)
	Complete(ctx context.Context, requestID, actorID int64) (*domain.CareRequest, error)
}
