package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
	"github.com/MahathirML/CareNeighbour/internal/core/ports"
	"github.com/MahathirML/CareNeighbour/internal/infrastructure/db/memory"
)

func newAuthSvc() *AuthService {
	return NewAuthService(memory.NewUserRepository(), "secret", time.Hour, zerolog.Nop())
}

func mustRegister(t *testing.T, svc *AuthService, username, password string) *domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), ports.RegisterInput{Username: username, Password: password})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return u
}

func TestAuthService_Register_Success(t *testing.T) {
	svc := newAuthSvc()

	user := mustRegister(t, svc, "alice", "pass123")
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != "" {
		t.Fatalf("role should be unset at registration, got %s", user.Role)
	}
	if user.Rating != 0 {
		t.Fatalf("expected rating 0, got %f", user.Rating)
	}
	if user.DisplayName != "alice" {
		t.Fatalf("expected display name to default to username, got %q", user.DisplayName)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newAuthSvc()

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Password: "pass"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := newAuthSvc()

	mustRegister(t, svc, "bob", "pass")
	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "pass2"})
	if !errors.Is(err, domain.ErrUserExists) || !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := newAuthSvc()
	registered := mustRegister(t, svc, "carol", "s3cret")

	token, user, err := svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user == nil || user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["user_id"] != float64(registered.ID) {
		t.Fatalf("expected user_id %d, got %v", registered.ID, claims["user_id"])
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc := newAuthSvc()
	mustRegister(t, svc, "dave", "goodpass")

	if _, _, err := svc.Login(context.Background(), "dave", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc := newAuthSvc()

	if _, _, err := svc.Login(context.Background(), "ghost", "pass"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_ChooseRole_Once(t *testing.T) {
	svc := newAuthSvc()
	u := mustRegister(t, svc, "erin", "pw")
	ctx := context.Background()

	if _, err := svc.ChooseRole(ctx, u.ID, "ADMIN"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	got, err := svc.ChooseRole(ctx, u.ID, domain.RoleProvider)
	if err != nil {
		t.Fatalf("choose role: %v", err)
	}
	if got.Role != domain.RoleProvider {
		t.Fatalf("expected PROVIDER, got %s", got.Role)
	}
	if _, err := svc.ChooseRole(ctx, u.ID, domain.RoleSeeker); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second choice, got %v", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc := newAuthSvc()
	ctx := context.Background()
	seeker := mustRegister(t, svc, "frank", "pw")
	provider := mustRegister(t, svc, "gina", "pw")
	_, _ = svc.ChooseRole(ctx, seeker.ID, domain.RoleSeeker)
	_, _ = svc.ChooseRole(ctx, provider.ID, domain.RoleProvider)

	rate := 25.0
	if _, err := svc.UpdateProfile(ctx, seeker.ID, ports.ProfileInput{HourlyRate: &rate}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("seeker rate: expected ErrForbidden, got %v", err)
	}
	negative := -1.0
	if _, err := svc.UpdateProfile(ctx, provider.ID, ports.ProfileInput{HourlyRate: &negative}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("negative rate: expected ErrValidation, got %v", err)
	}

	bio := "Ten years of home care"
	updated, err := svc.UpdateProfile(ctx, provider.ID, ports.ProfileInput{HourlyRate: &rate, Bio: &bio})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.HourlyRate == nil || *updated.HourlyRate != 25 || updated.Bio != bio {
		t.Fatalf("unexpected profile %+v", updated)
	}
	if updated.DisplayName != "gina" {
		t.Fatalf("untouched fields must be kept, got display name %q", updated.DisplayName)
	}
}
