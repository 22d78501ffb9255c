package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
	"github.com/MahathirML/CareNeighbour/internal/core/ports"
)

// RequestService enforces the care request state machine. Every transition
// is written with a conditional update on the status it observed, so two
// callers racing on the same request cannot both succeed.
type RequestService struct {
	requests ports.CareRequestRepository
	users    ports.UserRepository
	analyzer ports.RequestAnalyzer
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewRequestService(
	requests ports.CareRequestRepository,
	users ports.UserRepository,
	analyzer ports.RequestAnalyzer,
	notifier ports.Notifier,
	log zerolog.Logger,
) *RequestService {
	return &RequestService{
		requests: requests,
		users:    users,
		analyzer: analyzer,
		notifier: notifier,
		log:      log.With().Str("component", "request_service").Logger(),
	}
}

// CreateRequest opens a PENDING request for a seeker. If an idempotency key is
// provided and already used by the same seeker, the earlier request is returned.
func (s *RequestService) CreateRequest(ctx context.Context, in ports.CreateRequestInput) (*ports.CreateRequestResult, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, fmt.Errorf("create request: %w", domain.NewValidationError("description is required"))
	}
	if in.DurationMinutes != nil && *in.DurationMinutes <= 0 {
		return nil, fmt.Errorf("create request: %w", domain.NewValidationError("duration must be positive"))
	}

	seeker, err := s.users.FindByID(ctx, in.SeekerID)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if seeker.Role != domain.RoleSeeker {
		return nil, fmt.Errorf("create request: %w: only seekers can open requests", domain.ErrForbidden)
	}

	if in.IdempotencyKey != "" {
		existing, err := s.requests.FindByIdempotencyKey(ctx, in.SeekerID, in.IdempotencyKey)
		if err == nil {
			s.log.Info().Str("idempotency_key", in.IdempotencyKey).Int64("request_id", existing.ID).Msg("idempotent replay")
			return &ports.CreateRequestResult{Request: existing, AlreadyExisted: true}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("create request: %w", err)
		}
	}

	analysis := s.analyzer.Analyze(description)
	req := &domain.CareRequest{
		SeekerID:        in.SeekerID,
		Description:     description,
		Summary:         analysis.Summary,
		Tags:            analysis.Tags,
		Status:          domain.StatusPending,
		DurationMinutes: in.DurationMinutes,
		Location:        in.Location,
		Coordinates:     in.Coordinates,
		ScheduledFor:    in.ScheduledFor,
		IdempotencyKey:  in.IdempotencyKey,
	}

	created, err := s.requests.Create(ctx, req)
	if errors.Is(err, domain.ErrDuplicateRequest) {
		// Lost a race with a concurrent create carrying the same key.
		existing, findErr := s.requests.FindByIdempotencyKey(ctx, in.SeekerID, in.IdempotencyKey)
		if findErr != nil {
			return nil, fmt.Errorf("create request: %w", findErr)
		}
		return &ports.CreateRequestResult{Request: existing, AlreadyExisted: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.log.Info().
		Int64("request_id", created.ID).
		Int64("seeker_id", created.SeekerID).
		Strs("tags", created.Tags).
		Msg("care request created")

	return &ports.CreateRequestResult{Request: created}, nil
}

// GetRequest returns a request visible to its seeker or assigned provider.
func (s *RequestService) GetRequest(ctx context.Context, requestID, actorID int64) (*domain.CareRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if !req.IsParticipant(actorID) {
		return nil, fmt.Errorf("get request: %w", domain.ErrForbidden)
	}
	return req, nil
}

// ListForActor returns the requests a seeker opened or a provider was matched to.
func (s *RequestService) ListForActor(ctx context.Context, actorID int64) ([]*domain.CareRequest, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	var list []*domain.CareRequest
	switch actor.Role {
	case domain.RoleSeeker:
		list, err = s.requests.ListBySeeker(ctx, actorID)
	case domain.RoleProvider:
		list, err = s.requests.ListByProvider(ctx, actorID)
	default:
		return []*domain.CareRequest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return list, nil
}

// EditRequest lets the seeker change descriptive fields while the request is
// still open. A new description is summarized again.
func (s *RequestService) EditRequest(ctx context.Context, requestID, actorID int64, in ports.EditRequestInput) (*domain.CareRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("edit request: %w", err)
	}
	if req.SeekerID != actorID {
		return nil, fmt.Errorf("edit request: %w", domain.ErrForbidden)
	}
	if req.Status.IsTerminal() {
		return nil, fmt.Errorf("edit request: %w", domain.ErrUnmodifiable)
	}

	var patch domain.CareRequestPatch
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return nil, fmt.Errorf("edit request: %w", domain.NewValidationError("description cannot be empty"))
		}
		analysis := s.analyzer.Analyze(description)
		patch.Description = &description
		patch.Summary = &analysis.Summary
		patch.Tags = &analysis.Tags
	}
	if in.DurationMinutes != nil {
		if *in.DurationMinutes <= 0 {
			return nil, fmt.Errorf("edit request: %w", domain.NewValidationError("duration must be positive"))
		}
		patch.DurationMinutes = in.DurationMinutes
		if req.ProviderID != nil {
			cost, err := s.estimateCost(ctx, *req.ProviderID, *in.DurationMinutes)
			if err != nil {
				return nil, fmt.Errorf("edit request: %w", err)
			}
			patch.EstimatedCost = cost
		}
	}
	patch.Location = in.Location
	patch.Coordinates = in.Coordinates
	patch.ScheduledFor = in.ScheduledFor

	if patch.IsEmpty() {
		return req, nil
	}

	updated, err := s.requests.UpdateIfStatus(ctx, requestID, req.Status, patch)
	if err != nil {
		return nil, fmt.Errorf("edit request: %w", err)
	}

	s.log.Info().Int64("request_id", requestID).Msg("care request edited")
	return updated, nil
}

// MatchProvider assigns a provider to a pending request and notifies them.
func (s *RequestService) MatchProvider(ctx context.Context, requestID, actorID, providerID int64) (*domain.CareRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("match provider: %w", err)
	}
	if req.SeekerID != actorID {
		return nil, fmt.Errorf("match provider: %w", domain.ErrForbidden)
	}
	if !req.Status.CanTransitionTo(domain.StatusMatched) {
		return nil, fmt.Errorf("match provider: %w (from %s to %s)", domain.ErrInvalidTransition, req.Status, domain.StatusMatched)
	}

	provider, err := s.users.FindByID(ctx, providerID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && !provider.IsProvider()) {
		return nil, fmt.Errorf("match provider: %w", domain.ErrProviderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("match provider: %w", err)
	}

	status := domain.StatusMatched
	patch := domain.CareRequestPatch{Status: &status, ProviderID: &providerID}
	if req.DurationMinutes != nil && provider.HourlyRate != nil {
		cost := domain.EstimateCost(*req.DurationMinutes, *provider.HourlyRate)
		patch.EstimatedCost = &cost
	}

	updated, err := s.requests.UpdateIfStatus(ctx, requestID, domain.StatusPending, patch)
	if err != nil {
		return nil, fmt.Errorf("match provider: %w", err)
	}

	s.logTransition(updated, domain.StatusPending)
	s.notifier.Send(ctx, providerID, domain.EventNewRequest, domain.NewRequestEvent{
		RequestID: updated.ID,
		SeekerID:  updated.SeekerID,
	})
	return updated, nil
}

// RespondToMatch records the assigned provider's decision and tells the seeker.
func (s *RequestService) RespondToMatch(ctx context.Context, requestID, actorID int64, decision domain.MatchDecision) (*domain.CareRequest, error) {
	next, ok := decision.Status()
	if !ok {
		return nil, fmt.Errorf("respond to match: %w", domain.NewValidationError("decision must be ACCEPT or DECLINE"))
	}

	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("respond to match: %w", err)
	}
	if !req.IsAssignedTo(actorID) {
		return nil, fmt.Errorf("respond to match: %w", domain.ErrForbidden)
	}
	if req.Status != domain.StatusMatched {
		return nil, fmt.Errorf("respond to match: %w (from %s to %s)", domain.ErrInvalidTransition, req.Status, next)
	}

	updated, err := s.requests.UpdateIfStatus(ctx, requestID, domain.StatusMatched, domain.CareRequestPatch{Status: &next})
	if err != nil {
		return nil, fmt.Errorf("respond to match: %w", err)
	}

	s.logTransition(updated, domain.StatusMatched)
	s.notifier.Send(ctx, updated.SeekerID, domain.EventRequestResponse, domain.RequestResponseEvent{
		RequestID:  updated.ID,
		ProviderID: actorID,
		Status:     updated.Status,
	})
	return updated, nil
}

// Cancel closes an open request. The seeker may cancel at any open status;
// the assigned provider only once they have accepted. The provider reference
// is cleared and the other participant is notified.
func (s *RequestService) Cancel(ctx context.Context, requestID, actorID int64) (*domain.CareRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("cancel request: %w", err)
	}

	bySeeker := req.SeekerID == actorID
	byProvider := req.IsAssignedTo(actorID) && req.Status == domain.StatusAccepted
	if !bySeeker && !byProvider {
		return nil, fmt.Errorf("cancel request: %w", domain.ErrForbidden)
	}
	if !req.Status.CanTransitionTo(domain.StatusCancelled) {
		return nil, fmt.Errorf("cancel request: %w (from %s to %s)", domain.ErrInvalidTransition, req.Status, domain.StatusCancelled)
	}

	status := domain.StatusCancelled
	updated, err := s.requests.UpdateIfStatus(ctx, requestID, req.Status, domain.CareRequestPatch{
		Status:        &status,
		ClearProvider: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cancel request: %w", err)
	}

	s.logTransition(updated, req.Status)
	if req.ProviderID != nil {
		recipient := *req.ProviderID
		if byProvider {
			recipient = req.SeekerID
		}
		s.notifier.Send(ctx, recipient, domain.EventRequestResponse, domain.RequestResponseEvent{
			RequestID:  updated.ID,
			ProviderID: *req.ProviderID,
			Status:     updated.Status,
		})
	}
	return updated, nil
}

// Complete marks an accepted request done and notifies the other participant.
func (s *RequestService) Complete(ctx context.Context, requestID, actorID int64) (*domain.CareRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("complete request: %w", err)
	}
	if req.SeekerID != actorID && !req.IsAssignedTo(actorID) {
		return nil, fmt.Errorf("complete request: %w", domain.ErrForbidden)
	}
	if req.Status != domain.StatusAccepted {
		return nil, fmt.Errorf("complete request: %w (from %s to %s)", domain.ErrInvalidTransition, req.Status, domain.StatusCompleted)
	}

	status := domain.StatusCompleted
	updated, err := s.requests.UpdateIfStatus(ctx, requestID, domain.StatusAccepted, domain.CareRequestPatch{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("complete request: %w", err)
	}

	s.logTransition(updated, domain.StatusAccepted)
	recipient := *updated.ProviderID
	if actorID == recipient {
		recipient = updated.SeekerID
	}
	s.notifier.Send(ctx, recipient, domain.EventRequestResponse, domain.RequestResponseEvent{
		RequestID:  updated.ID,
		ProviderID: *updated.ProviderID,
		Status:     updated.Status,
	})
	return updated, nil
}

func (s *RequestService) estimateCost(ctx context.Context, providerID int64, durationMinutes int) (*float64, error) {
	provider, err := s.users.FindByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if provider.HourlyRate == nil {
		return nil, nil
	}
	cost := domain.EstimateCost(durationMinutes, *provider.HourlyRate)
	return &cost, nil
}

func (s *RequestService) logTransition(req *domain.CareRequest, from domain.RequestStatus) {
	s.log.Info().
		Int64("request_id", req.ID).
		Str("from", string(from)).
		Str("to", string(req.Status)).
		Msg("care request transitioned")
}
