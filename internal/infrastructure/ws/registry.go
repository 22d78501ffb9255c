// Package ws keeps the live websocket connection per user and pushes
// typed event frames to them.
package ws

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/MahathirML/CareNeighbour/internal/api/metrics"
	"github.com/MahathirML/CareNeighbour/internal/core/domain"
)

// Handle is a live connection that outbound frames can be handed to.
type Handle interface {
	ID() string
	// Deliver queues frame for writing and reports whether it was accepted.
	// It must not block.
	Deliver(frame []byte) bool
	Close()
}

// Registry maps each user to at most one live Handle.
type Registry struct {
	mu       sync.RWMutex
	byUser   map[int64]Handle
	byHandle map[string]int64
	log      zerolog.Logger
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		byUser:   make(map[int64]Handle),
		byHandle: make(map[string]int64),
		log:      log.With().Str("component", "ws_registry").Logger(),
	}
}

// Register associates h with userID. A previous handle for the same user is
// dropped from the registry but not closed; its own read loop ends it.
func (r *Registry) Register(userID int64, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byHandle[h.ID()]; ok && prev != userID {
		delete(r.byUser, prev)
	}
	if old, ok := r.byUser[userID]; ok && old.ID() != h.ID() {
		delete(r.byHandle, old.ID())
		r.log.Info().Int64("user_id", userID).Str("old", old.ID()).Str("new", h.ID()).Msg("connection replaced")
	} else {
		r.log.Info().Int64("user_id", userID).Str("conn", h.ID()).Msg("connection registered")
	}

	r.byUser[userID] = h
	r.byHandle[h.ID()] = userID
	metrics.ActiveConnections.Set(float64(len(r.byUser)))
}

// UnregisterHandle removes whichever user currently maps to h. It reports
// whether anything was removed; calling it again is a no-op.
func (r *Registry) UnregisterHandle(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byHandle[h.ID()]
	if !ok {
		return false
	}
	delete(r.byHandle, h.ID())
	if cur, ok := r.byUser[userID]; ok && cur.ID() == h.ID() {
		delete(r.byUser, userID)
	}

	metrics.ActiveConnections.Set(float64(len(r.byUser)))
	r.log.Info().Int64("user_id", userID).Str("conn", h.ID()).Msg("connection unregistered")
	return true
}

// CloseAll closes every registered handle and empties the registry.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	handles := make([]Handle, 0, len(r.byUser))
	for _, h := range r.byUser {
		handles = append(handles, h)
	}
	r.byUser = make(map[int64]Handle)
	r.byHandle = make(map[string]int64)
	metrics.ActiveConnections.Set(0)
	r.mu.Unlock()

	for _, h := range handles {
		h.Close()
	}
	r.log.Info().Int("connections", len(handles)).Msg("all connections closed")
}

// UserFor returns the user h is registered for.
func (r *Registry) UserFor(h Handle) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byHandle[h.ID()]
	return id, ok
}

// IsConnected reports whether userID has a live handle.
func (r *Registry) IsConnected(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byUser[userID]
	return ok
}

// Count returns the number of connected users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

// Send implements ports.Notifier for this process's connections.
func (r *Registry) Send(_ context.Context, userID int64, event domain.EventType, payload any) {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		r.log.Warn().Err(err).Str("type", string(event)).Msg("encode frame failed")
		return
	}
	r.Deliver(userID, event, frame)
}

// Deliver hands an encoded frame to userID's handle, if any.
func (r *Registry) Deliver(userID int64, event domain.EventType, frame []byte) bool {
	r.mu.RLock()
	h, ok := r.byUser[userID]
	r.mu.RUnlock()

	if !ok {
		metrics.NotificationsTotal.WithLabelValues(string(event), "offline").Inc()
		r.log.Debug().Int64("user_id", userID).Str("type", string(event)).Msg("notification dropped: not connected")
		return false
	}
	if !h.Deliver(frame) {
		metrics.NotificationsTotal.WithLabelValues(string(event), "dropped").Inc()
		r.log.Debug().Int64("user_id", userID).Str("type", string(event)).Msg("notification dropped: connection not writable")
		return false
	}
	metrics.NotificationsTotal.WithLabelValues(string(event), "delivered").Inc()
	return true
}
