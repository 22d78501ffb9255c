package ws

import (
	"encoding/json"
	"fmt"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
)

// Inbound frame types.
const (
	FrameRegisterClient         = "register-client"
	FrameProviderLocationUpdate = "provider-location-update"
	FrameProviderStatusUpdate   = "provider-status-update"
)

type incomingMessage struct {
	Type string `json:"type"`
}

type registerClientFrame struct {
	UserID int64 `json:"userId"`
}

type providerLocationFrame struct {
	UserID    int64    `json:"userId"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	RequestID *int64   `json:"requestId,omitempty"`
}

func (f providerLocationFrame) location() *domain.Coordinates {
	if f.Lat == nil || f.Lon == nil {
		return nil
	}
	return &domain.Coordinates{Lat: *f.Lat, Lon: *f.Lon}
}

type providerStatusFrame struct {
	UserID   int64    `json:"userId"`
	IsOnline bool     `json:"isOnline"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
}

func (f providerStatusFrame) location() *domain.Coordinates {
	if f.Lat == nil || f.Lon == nil {
		return nil
	}
	return &domain.Coordinates{Lat: *f.Lat, Lon: *f.Lon}
}

// EncodeFrame renders payload as a flat JSON object carrying a "type" field.
func EncodeFrame(event domain.EventType, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event, err)
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%s payload is not an object: %w", event, err)
	}
	typ, _ := json.Marshal(event)
	fields["type"] = typ

	return json.Marshal(fields)
}
