package ports

import (
	"context"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
)

// RegisterInput carries the fields accepted at sign-up.
type RegisterInput struct {
	Username    string
	Password    string
	DisplayName string
	Email       string
	Phone       string
}

// ProfileInput is a partial profile update; nil means unchanged.
type ProfileInput struct {
	DisplayName *string
	Bio         *string
	Email       *string
	Phone       *string
	HourlyRate  *float64
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	ChooseRole(ctx context.Context, userID int64, role domain.Role) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*domain.User, error)
}
