package domain

import "time"

// RequestStatus represents the lifecycle state of a care request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusMatched   RequestStatus = "MATCHED"
	StatusAccepted  RequestStatus = "ACCEPTED"
	StatusDeclined  RequestStatus = "DECLINED"
	StatusCompleted RequestStatus = "COMPLETED"
	StatusCancelled RequestStatus = "CANCELLED"
)

// validTransitions defines the allowed state machine transitions.
// DECLINED, COMPLETED and CANCELLED have no outgoing edges.
var validTransitions = map[RequestStatus][]RequestStatus{
	StatusPending:  {StatusMatched, StatusCancelled},
	StatusMatched:  {StatusAccepted, StatusDeclined, StatusCancelled},
	StatusAccepted: {StatusCompleted, StatusCancelled},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible from s.
func (s RequestStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// HasProvider reports whether a request in status s must reference a provider.
func (s RequestStatus) HasProvider() bool {
	switch s {
	case StatusMatched, StatusAccepted, StatusDeclined, StatusCompleted:
		return true
	}
	return false
}

// MatchDecision is a provider's answer to a match.
type MatchDecision string

const (
	DecisionAccept  MatchDecision = "ACCEPT"
	DecisionDecline MatchDecision = "DECLINE"
)

// Status returns the request status a decision leads to.
func (d MatchDecision) Status() (RequestStatus, bool) {
	switch d {
	case DecisionAccept:
		return StatusAccepted, true
	case DecisionDecline:
		return StatusDeclined, true
	}
	return "", false
}

// CareRequest is the aggregate the lifecycle engine transacts against.
type CareRequest struct {
	ID              int64         `json:"id" bson:"_id"`
	SeekerID        int64         `json:"seekerId" bson:"seeker_id"`
	ProviderID      *int64        `json:"providerId" bson:"provider_id"`
	Description     string        `json:"description" bson:"description"`
	Summary         string        `json:"summary" bson:"summary"`
	Tags            []string      `json:"tags" bson:"tags"`
	Status          RequestStatus `json:"status" bson:"status"`
	DurationMinutes *int          `json:"durationMinutes,omitempty" bson:"duration_minutes,omitempty"`
	EstimatedCost   *float64      `json:"estimatedCost,omitempty" bson:"estimated_cost,omitempty"`
	Location        string        `json:"location,omitempty" bson:"location,omitempty"`
	Coordinates     *Coordinates  `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	CreatedAt       time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updatedAt" bson:"updated_at"`
	ScheduledFor    *time.Time    `json:"scheduledFor,omitempty" bson:"scheduled_for,omitempty"`
	IdempotencyKey  string        `json:"-" bson:"idempotency_key,omitempty"`
}

// IsParticipant reports whether userID is the seeker or the assigned provider.
func (r *CareRequest) IsParticipant(userID int64) bool {
	return r.SeekerID == userID || r.IsAssignedTo(userID)
}

// IsAssignedTo reports whether userID is the assigned provider.
func (r *CareRequest) IsAssignedTo(userID int64) bool {
	return r.ProviderID != nil && *r.ProviderID == userID
}

// Clone returns a deep copy so stores never hand out shared pointers.
func (r *CareRequest) Clone() *CareRequest {
	if r == nil {
		return nil
	}
	c := *r
	if r.ProviderID != nil {
		id := *r.ProviderID
		c.ProviderID = &id
	}
	if r.Tags != nil {
		c.Tags = append([]string(nil), r.Tags...)
	}
	if r.DurationMinutes != nil {
		d := *r.DurationMinutes
		c.DurationMinutes = &d
	}
	if r.EstimatedCost != nil {
		v := *r.EstimatedCost
		c.EstimatedCost = &v
	}
	if r.Coordinates != nil {
		p := *r.Coordinates
		c.Coordinates = &p
	}
	if r.ScheduledFor != nil {
		t := *r.ScheduledFor
		c.ScheduledFor = &t
	}
	return &c
}

// CareRequestPatch is a partial update; nil fields are left untouched.
type CareRequestPatch struct {
	Status          *RequestStatus
	ProviderID      *int64
	ClearProvider   bool
	Description     *string
	Summary         *string
	Tags            *[]string
	DurationMinutes *int
	EstimatedCost   *float64
	Location        *string
	Coordinates     *Coordinates
	ScheduledFor    *time.Time
}

// IsEmpty reports whether the patch would change nothing.
func (p CareRequestPatch) IsEmpty() bool {
	return p.Status == nil && p.ProviderID == nil && !p.ClearProvider &&
		p.Description == nil && p.Summary == nil && p.Tags == nil &&
		p.DurationMinutes == nil && p.EstimatedCost == nil && p.Location == nil &&
		p.Coordinates == nil && p.ScheduledFor == nil
}

// Apply merges the patch into r and stamps UpdatedAt.
func (p CareRequestPatch) Apply(r *CareRequest, now time.Time) {
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.ClearProvider {
		r.ProviderID = nil
	} else if p.ProviderID != nil {
		id := *p.ProviderID
		r.ProviderID = &id
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Summary != nil {
		r.Summary = *p.Summary
	}
	if p.Tags != nil {
		r.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.DurationMinutes != nil {
		d := *p.DurationMinutes
		r.DurationMinutes = &d
	}
	if p.EstimatedCost != nil {
		v := *p.EstimatedCost
		r.EstimatedCost = &v
	}
	if p.Location != nil {
		r.Location = *p.Location
	}
	if p.Coordinates != nil {
		c := *p.Coordinates
		r.Coordinates = &c
	}
	if p.ScheduledFor != nil {
		t := *p.ScheduledFor
		r.ScheduledFor = &t
	}
	r.UpdatedAt = now
}

// EstimateCost prices a visit of the given length at an hourly rate.
func EstimateCost(durationMinutes int, hourlyRate float64) float64 {
	return float64(durationMinutes) / 60 * hourlyRate
}
