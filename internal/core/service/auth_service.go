package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
	"github.com/MahathirML/CareNeighbour/internal/core/ports"
)

// AuthService implements registration, login and profile management.
type AuthService struct {
	repo      ports.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log.With().Str("component", "auth_service").Logger(),
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("register: %w", domain.NewValidationError("username and password are required"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = username
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Email:        in.Email,
		Phone:        in.Phone,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("login: sign token: %w", err)
	}

	return token, user, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ChooseRole performs the one-time role selection.
func (s *AuthService) ChooseRole(ctx context.Context, userID int64, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("choose role: %w", domain.NewValidationError("role must be SEEKER or PROVIDER"))
	}

	user, err := s.repo.SetRole(ctx, userID, role)
	if err != nil {
		return nil, fmt.Errorf("choose role: %w", err)
	}

	s.log.Info().Int64("user_id", userID).Str("role", string(role)).Msg("role chosen")
	return user, nil
}

// UpdateProfile merges the given fields. Only providers carry an hourly rate.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, in ports.ProfileInput) (*domain.User, error) {
	if in.HourlyRate != nil {
		if *in.HourlyRate < 0 {
			return nil, fmt.Errorf("update profile: %w", domain.NewValidationError("hourly rate cannot be negative"))
		}
		user, err := s.repo.FindByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		if !user.IsProvider() {
			return nil, fmt.Errorf("update profile: %w: hourly rate is for providers", domain.ErrForbidden)
		}
	}

	user, err := s.repo.Update(ctx, userID, domain.UserPatch{
		DisplayName: in.DisplayName,
		Bio:         in.Bio,
		Email:       in.Email,
		Phone:       in.Phone,
		HourlyRate:  in.HourlyRate,
	})
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
