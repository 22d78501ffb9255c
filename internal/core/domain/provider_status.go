package domain

import "time"

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lon float64 `json:"lon" bson:"lon"`
}

// ProviderStatus is the availability row kept for each provider user.
type ProviderStatus struct {
	UserID      int64        `json:"userId" bson:"user_id"`
	IsOnline    bool         `json:"isOnline" bson:"is_online"`
	Location    *Coordinates `json:"location,omitempty" bson:"location,omitempty"`
	LastUpdated time.Time    `json:"lastUpdated" bson:"last_updated"`
}

// Clone returns a deep copy of s.
func (s *ProviderStatus) Clone() *ProviderStatus {
	if s == nil {
		return nil
	}
	c := *s
	if s.Location != nil {
		loc := *s.Location
		c.Location = &loc
	}
	return &c
}

// ProviderStatusPatch is a partial update; nil fields are left untouched.
type ProviderStatusPatch struct {
	IsOnline *bool
	Location *Coordinates
}

// Apply merges the patch into s and stamps LastUpdated.
func (p ProviderStatusPatch) Apply(s *ProviderStatus, now time.Time) {
	if p.IsOnline != nil {
		s.IsOnline = *p.IsOnline
	}
	if p.Location != nil {
		loc := *p.Location
		s.Location = &loc
	}
	s.LastUpdated = now
}
