package ws

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/MahathirML/CareNeighbour/internal/core/ports"
)

// SignalQueue accepts provider signals for ordered asynchronous processing.
type SignalQueue interface {
	Enqueue(sig ports.ProviderSignal) bool
}

// Session routes the inbound frames of one connection. A connection only
// acts for the user its token resolved to; frames naming anyone else are
// ignored.
type Session struct {
	userID   int64
	handle   Handle
	registry *Registry
	signals  SignalQueue
	log      zerolog.Logger
}

func NewSession(userID int64, handle Handle, registry *Registry, signals SignalQueue, log zerolog.Logger) *Session {
	return &Session{
		userID:   userID,
		handle:   handle,
		registry: registry,
		signals:  signals,
		log:      log.With().Int64("user_id", userID).Str("conn", handle.ID()).Logger(),
	}
}

// Open registers the connection for its user.
func (s *Session) Open() {
	s.registry.Register(s.userID, s.handle)
}

// Close drops the connection from the registry. Safe to call repeatedly.
func (s *Session) Close() {
	s.registry.UnregisterHandle(s.handle)
}

// HandleFrame decodes and applies one inbound frame.
func (s *Session) HandleFrame(msg []byte) {
	var base incomingMessage
	if err := json.Unmarshal(msg, &base); err != nil {
		s.log.Warn().Err(err).Msg("invalid frame")
		return
	}

	switch base.Type {
	case FrameRegisterClient:
		var f registerClientFrame
		if err := json.Unmarshal(msg, &f); err != nil {
			s.log.Warn().Err(err).Str("type", base.Type).Msg("invalid frame payload")
			return
		}
		if !s.owns(f.UserID, base.Type) {
			return
		}
		s.registry.Register(s.userID, s.handle)

	case FrameProviderLocationUpdate:
		var f providerLocationFrame
		if err := json.Unmarshal(msg, &f); err != nil {
			s.log.Warn().Err(err).Str("type", base.Type).Msg("invalid frame payload")
			return
		}
		if !s.owns(f.UserID, base.Type) {
			return
		}
		loc := f.location()
		if loc == nil {
			s.log.Warn().Str("type", base.Type).Msg("location frame without lat/lon ignored")
			return
		}
		s.signals.Enqueue(ports.ProviderSignal{
			Kind:       ports.SignalLocation,
			ProviderID: s.userID,
			Location:   loc,
			RequestID:  f.RequestID,
		})

	case FrameProviderStatusUpdate:
		var f providerStatusFrame
		if err := json.Unmarshal(msg, &f); err != nil {
			s.log.Warn().Err(err).Str("type", base.Type).Msg("invalid frame payload")
			return
		}
		if !s.owns(f.UserID, base.Type) {
			return
		}
		s.signals.Enqueue(ports.ProviderSignal{
			Kind:       ports.SignalStatus,
			ProviderID: s.userID,
			IsOnline:   f.IsOnline,
			Location:   f.location(),
		})

	default:
		s.log.Warn().Str("type", base.Type).Msg("unknown frame type")
	}
}

// owns reports whether a frame's userId matches the session identity. A zero
// userId is taken to mean the session's own user.
func (s *Session) owns(userID int64, frameType string) bool {
	if userID == 0 || userID == s.userID {
		return true
	}
	s.log.Warn().Int64("claimed_user_id", userID).Str("type", frameType).Msg("frame for another user ignored")
	return false
}
