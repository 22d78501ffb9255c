package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
	"github.com/MahathirML/CareNeighbour/internal/core/ports"
	"github.com/MahathirML/CareNeighbour/pkg/geo"
)

// ProviderService is the provider directory: availability, last known
// location and the distance-ranked listing seekers match from.
type ProviderService struct {
	statuses ports.ProviderStatusRepository
	users    ports.UserRepository
	requests ports.CareRequestRepository
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewProviderService(
	statuses ports.ProviderStatusRepository,
	users ports.UserRepository,
	requests ports.CareRequestRepository,
	notifier ports.Notifier,
	log zerolog.Logger,
) *ProviderService {
	return &ProviderService{
		statuses: statuses,
		users:    users,
		requests: requests,
		notifier: notifier,
		log:      log.With().Str("component", "provider_service").Logger(),
	}
}

// SetOnline toggles availability and optionally records a location.
func (s *ProviderService) SetOnline(ctx context.Context, providerID int64, isOnline bool, loc *domain.Coordinates) (*domain.ProviderStatus, error) {
	if err := s.requireProvider(ctx, providerID); err != nil {
		return nil, fmt.Errorf("set online: %w", err)
	}
	if loc != nil {
		if err := validateCoordinates(*loc); err != nil {
			return nil, fmt.Errorf("set online: %w", err)
		}
	}

	status, err := s.statuses.Upsert(ctx, providerID, domain.ProviderStatusPatch{IsOnline: &isOnline, Location: loc})
	if err != nil {
		return nil, fmt.Errorf("set online: %w", err)
	}

	s.log.Info().Int64("provider_id", providerID).Bool("online", isOnline).Msg("provider status updated")
	return status, nil
}

// ReportLocation stores the latest position and pushes it to the seeker of
// every accepted request assigned to the provider.
func (s *ProviderService) ReportLocation(ctx context.Context, providerID int64, loc domain.Coordinates, requestID *int64) error {
	if err := s.requireProvider(ctx, providerID); err != nil {
		return fmt.Errorf("report location: %w", err)
	}
	if err := validateCoordinates(loc); err != nil {
		return fmt.Errorf("report location: %w", err)
	}

	if _, err := s.statuses.Upsert(ctx, providerID, domain.ProviderStatusPatch{Location: &loc}); err != nil {
		return fmt.Errorf("report location: %w", err)
	}

	assigned, err := s.requests.ListByProvider(ctx, providerID)
	if err != nil {
		return fmt.Errorf("report location: %w", err)
	}
	for _, req := range assigned {
		if req.Status != domain.StatusAccepted {
			continue
		}
		if requestID != nil && req.ID != *requestID {
			continue
		}
		s.notifier.Send(ctx, req.SeekerID, domain.EventCaregiverLocation, domain.CaregiverLocationEvent{
			ProviderID: providerID,
			Lat:        loc.Lat,
			Lon:        loc.Lon,
			RequestID:  req.ID,
		})
	}

	s.log.Debug().Int64("provider_id", providerID).Float64("lat", loc.Lat).Float64("lon", loc.Lon).Msg("provider location updated")
	return nil
}

// ListAvailable returns online providers joined with their profile. With a
// reference point, entries are ordered by ascending distance and providers
// without a known location come last; ties keep id order.
func (s *ProviderService) ListAvailable(ctx context.Context, ref *domain.Coordinates) ([]ports.AvailableProvider, error) {
	online, err := s.statuses.ListOnline(ctx)
	if err != nil {
		return nil, fmt.Errorf("list available: %w", err)
	}
	sort.Slice(online, func(i, j int) bool { return online[i].UserID < online[j].UserID })

	out := make([]ports.AvailableProvider, 0, len(online))
	for _, st := range online {
		user, err := s.users.FindByID(ctx, st.UserID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list available: %w", err)
		}
		if !user.IsProvider() {
			continue
		}

		entry := ports.AvailableProvider{Provider: user, Status: st}
		if ref != nil && st.Location != nil {
			d := geo.DistanceMiles(ref.Lat, ref.Lon, st.Location.Lat, st.Location.Lon)
			entry.DistanceMiles = &d
		}
		out = append(out, entry)
	}

	if ref != nil {
		sort.SliceStable(out, func(i, j int) bool {
			di, dj := out[i].DistanceMiles, out[j].DistanceMiles
			switch {
			case di == nil:
				return false
			case dj == nil:
				return true
			default:
				return *di < *dj
			}
		})
	}
	return out, nil
}

func (s *ProviderService) requireProvider(ctx context.Context, userID int64) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsProvider() {
		return fmt.Errorf("%w: only providers report availability", domain.ErrForbidden)
	}
	return nil
}

func validateCoordinates(c domain.Coordinates) error {
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return domain.NewValidationError("coordinates out of range")
	}
	return nil
}
