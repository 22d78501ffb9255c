package ports

import (
	"context"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
)

// Notifier pushes events to connected users. Delivery is best effort:
// an absent or unwritable connection drops the event silently.
type Notifier interface {
	Send(ctx context.Context, userID int64, event domain.EventType, payload any)
}

// Analysis is the summary and tag list derived from a free-text request.
type Analysis struct {
	Summary string
	Tags    []string
}

// RequestAnalyzer summarizes request descriptions.
type RequestAnalyzer interface {
	Analyze(text string) Analysis
}
