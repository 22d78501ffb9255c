package domain

// EventType discriminates the frames pushed to connected users.
type EventType string

const (
	EventNewRequest        EventType = "new-request"
	EventRequestResponse   EventType = "request-response"
	EventCaregiverLocation EventType = "caregiver-location"
)

// NewRequestEvent tells a provider a seeker matched them to a request.
type NewRequestEvent struct {
	RequestID int64 `json:"requestId"`
	SeekerID  int64 `json:"seekerId"`
}

// RequestResponseEvent tells a participant the request changed status.
type RequestResponseEvent struct {
	RequestID  int64         `json:"requestId"`
	ProviderID int64         `json:"providerId"`
	Status     RequestStatus `json:"status"`
}

// CaregiverLocationEvent streams a provider's position to a seeker.
type CaregiverLocationEvent struct {
	ProviderID int64   `json:"providerId"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	RequestID  int64   `json:"requestId,omitempty"`
}
