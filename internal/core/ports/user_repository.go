package ports

import (
	"context"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create assigns the next id and stores u. A taken username yields domain.ErrUserExists.
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Update merges patch into the stored user and returns the result.
	Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	// SetRole sets the role only while it is still unset; otherwise domain.ErrRoleAlreadySet.
	SetRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error)
}
