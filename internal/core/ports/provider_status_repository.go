package ports

import (
	"context"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
)

// ProviderStatusRepository keeps exactly one availability row per provider.
type ProviderStatusRepository interface {
	FindByUserID(ctx context.Context, userID int64) (*domain.ProviderStatus, error)
	// Upsert finds the row for userID, creating it offline when absent, then merges patch.
	Upsert(ctx context.Context, userID int64, patch domain.ProviderStatusPatch) (*domain.ProviderStatus, error)
	// ListOnline returns online rows ordered by user id.
	ListOnline(ctx context.Context) ([]*domain.ProviderStatus, error)
}
