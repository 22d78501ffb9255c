package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
	"github.com/MahathirML/CareNeighbour/internal/core/ports"
)

type stubAuthService struct {
	registerFn   func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn      func(ctx context.Context, username, password string) (string, *domain.User, error)
	getUserFn    func(ctx context.Context, userID int64) (*domain.User, error)
	chooseRoleFn func(ctx context.Context, userID int64, role domain.Role) (*domain.User, error)
	updateFn     func(ctx context.Context, userID int64, in ports.ProfileInput) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.getUserFn(ctx, userID)
}

func (s *stubAuthService) ChooseRole(ctx context.Context, userID int64, role domain.Role) (*domain.User, error) {
	return s.chooseRoleFn(ctx, userID, role)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, userID int64, in ports.ProfileInput) (*domain.User, error) {
	return s.updateFn(ctx, userID, in)
}

// ---- Register ----

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "alice" || in.DisplayName != "Alice" || in.Phone != "555" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: 1, Username: in.Username, DisplayName: in.DisplayName, PasswordHash: "hash"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newContext(http.MethodPost, "/api/register",
		`{"username":"alice","password":"secret1","displayName":"Alice","email":"a@example.com","phoneNumber":"555"}`, 0)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusCreated)

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["username"] != "alice" || user["displayName"] != "Alice" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatalf("password hash must not be serialised")
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	c, _ := newContext(http.MethodPost, "/api/register", `{"username":"bob","password":"secret1"}`, 0)

	err := NewAuthHandler(stub).Register(c)
	expectKind(t, err, domain.ErrConflict)
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newContext(http.MethodPost, "/api/register", "not-json", 0)
	expectHTTPError(t, handler.Register(c), http.StatusBadRequest)

	c, _ = newContext(http.MethodPost, "/api/register", `{"username":"bob"}`, 0)
	expectKind(t, handler.Register(c), domain.ErrValidation)
}

// ---- Login ----

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, *domain.User, error) {
			if username != "alice" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return "token123", &domain.User{ID: 1, Username: "alice", Role: domain.RoleSeeker}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/api/login", `{"username":"alice","password":"secret"}`, 0)

	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" || user["role"] != "SEEKER" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrUserNotFound} {
		stub := &stubAuthService{
			loginFn: func(ctx context.Context, username, password string) (string, *domain.User, error) {
				return "", nil, want
			},
		}
		c, _ := newContext(http.MethodPost, "/api/login", `{"username":"alice","password":"bad"}`, 0)
		expectKind(t, NewAuthHandler(stub).Login(c), want)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	c, _ := newContext(http.MethodPost, "/api/login", "{", 0)
	expectHTTPError(t, NewAuthHandler(stub).Login(c), http.StatusBadRequest)
}

// ---- Profile ----

func TestAuthHandler_Me_RequiresAuth(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/user", "", 0)
	expectHTTPError(t, NewAuthHandler(&stubAuthService{}).Me(c), http.StatusUnauthorized)
}

func TestAuthHandler_Me(t *testing.T) {
	stub := &stubAuthService{
		getUserFn: func(ctx context.Context, userID int64) (*domain.User, error) {
			return &domain.User{ID: userID, Username: "alice"}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/user", "", 5)

	if err := NewAuthHandler(stub).Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != 5 {
		t.Fatalf("expected id 5, got %d", resp.ID)
	}
}

func TestAuthHandler_UpdateProfile_PartialFields(t *testing.T) {
	stub := &stubAuthService{
		updateFn: func(ctx context.Context, userID int64, in ports.ProfileInput) (*domain.User, error) {
			if in.Bio == nil || *in.Bio != "caring" {
				t.Fatalf("bio not forwarded: %+v", in)
			}
			if in.DisplayName != nil || in.Email != nil || in.HourlyRate != nil {
				t.Fatalf("absent fields must stay nil: %+v", in)
			}
			return &domain.User{ID: userID, Bio: *in.Bio}, nil
		},
	}
	c, rec := newContext(http.MethodPatch, "/api/user", `{"bio":"caring"}`, 5)

	if err := NewAuthHandler(stub).UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)
}

func TestAuthHandler_UpdateProfile_NegativeRate(t *testing.T) {
	stub := &stubAuthService{
		updateFn: func(ctx context.Context, userID int64, in ports.ProfileInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	c, _ := newContext(http.MethodPatch, "/api/user", `{"hourlyRate":-1}`, 5)
	expectKind(t, NewAuthHandler(stub).UpdateProfile(c), domain.ErrValidation)
}

func TestAuthHandler_ChooseRole(t *testing.T) {
	stub := &stubAuthService{
		chooseRoleFn: func(ctx context.Context, userID int64, role domain.Role) (*domain.User, error) {
			if role != domain.RoleProvider {
				t.Fatalf("unexpected role %q", role)
			}
			return &domain.User{ID: userID, Role: role}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/api/user/role", `{"role":"PROVIDER"}`, 5)

	if err := NewAuthHandler(stub).ChooseRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	c, _ = newContext(http.MethodPost, "/api/user/role", `{"role":"ADMIN"}`, 5)
	expectKind(t, NewAuthHandler(stub).ChooseRole(c), domain.ErrValidation)
}
