package ports

import (
	"context"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
)

// AvailableProvider is one entry of the availability listing.
type AvailableProvider struct {
	Provider *domain.User
	Status   *domain.ProviderStatus
	// DistanceMiles is nil when no reference point was given or the provider has no location.
	DistanceMiles *float64
}

// ProviderService maintains provider availability and location.
type ProviderService interface {
	SetOnline(ctx context.Context, providerID int64, isOnline bool, loc *domain.Coordinates) (*domain.ProviderStatus, error)
	// ReportLocation stores the position and relays it to seekers of accepted requests.
	// A non-nil requestID limits the relay to that request.
	ReportLocation(ctx context.Context, providerID int64, loc domain.Coordinates, requestID *int64) error
	ListAvailable(ctx context.Context, ref *domain.Coordinates) ([]AvailableProvider, error)
}

// SignalKind distinguishes provider signals arriving over the realtime channel.
type SignalKind string

const (
	SignalLocation SignalKind = "location"
	SignalStatus   SignalKind = "status"
)

// ProviderSignal is a location or availability update sent by a provider.
type ProviderSignal struct {
	Kind       SignalKind
	ProviderID int64
	// IsOnline is only meaningful for SignalStatus.
	IsOnline  bool
	Location  *domain.Coordinates
	RequestID *int64
}
