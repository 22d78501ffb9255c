package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
	"github.com/MahathirML/CareNeighbour/internal/core/ports"
	"github.com/MahathirML/CareNeighbour/internal/core/service"
	"github.com/MahathirML/CareNeighbour/internal/infrastructure/db/memory"
	"github.com/MahathirML/CareNeighbour/internal/infrastructure/nlp"
	"github.com/MahathirML/CareNeighbour/internal/infrastructure/ws"
)

type signalSink struct{}

func (signalSink) Enqueue(ports.ProviderSignal) bool { return true }

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	log := zerolog.Nop()

	users := memory.NewUserRepository()
	requests := memory.NewCareRequestRepository()
	statuses := memory.NewProviderStatusRepository()
	registry := ws.NewRegistry(log)

	return NewRouter(Deps{
		JWTSecret:       "secret",
		Log:             log,
		Users:           users,
		AuthService:     service.NewAuthService(users, "secret", time.Hour, log),
		RequestService:  service.NewRequestService(requests, users, nlp.NewKeywordAnalyzer(), registry, log),
		ProviderService: service.NewProviderService(statuses, users, requests, registry, log),
		Registry:        registry,
		Signals:         signalSink{},
	})
}

// do sends a JSON request through the full middleware chain.
func do(t *testing.T, e *echo.Echo, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

// signUp registers, logs in and picks a role, returning the token and user id.
func signUp(t *testing.T, e *echo.Echo, username, role string) (string, int64) {
	t.Helper()
	rec, _ := do(t, e, http.MethodPost, "/api/register", "", fmt.Sprintf(`{"username":%q,"password":"secret1"}`, username))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", username, rec.Code, rec.Body.String())
	}

	rec, body := do(t, e, http.MethodPost, "/api/login", "", fmt.Sprintf(`{"username":%q,"password":"secret1"}`, username))
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", username, rec.Code, rec.Body.String())
	}
	token, _ := body["token"].(string)
	user, _ := body["user"].(map[string]any)
	id, _ := user["id"].(float64)

	rec, _ = do(t, e, http.MethodPost, "/api/user/role", token, fmt.Sprintf(`{"role":%q}`, role))
	if rec.Code != http.StatusOK {
		t.Fatalf("choose role %s: %d %s", username, rec.Code, rec.Body.String())
	}
	return token, int64(id)
}

func TestRouter_MatchingFlow(t *testing.T) {
	e := newTestRouter(t)

	seeker, _ := signUp(t, e, "alice", "SEEKER")
	provider, providerID := signUp(t, e, "bob", "PROVIDER")

	rec, _ := do(t, e, http.MethodPost, "/api/provider-status", provider, `{"isOnline":true,"lat":40.7128,"lon":-74.006}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("provider status: %d %s", rec.Code, rec.Body.String())
	}

	rec, body := do(t, e, http.MethodGet, "/api/providers?lat=40.73&lon=-73.99", seeker, "")
	if rec.Code != http.StatusOK || body["count"] != float64(1) {
		t.Fatalf("providers: %d %s", rec.Code, rec.Body.String())
	}

	rec, body = do(t, e, http.MethodPost, "/api/care-requests", seeker,
		`{"description":"I need help with medication reminders for 2 hours","durationMinutes":120}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	if body["status"] != "PENDING" || body["providerId"] != nil {
		t.Fatalf("unexpected created request: %v", body)
	}
	tags := fmt.Sprint(body["tags"])
	if !strings.Contains(tags, "Medication") || !strings.Contains(tags, "2 hours") {
		t.Fatalf("unexpected tags %s", tags)
	}
	reqPath := fmt.Sprintf("/api/care-requests/%d", int64(body["id"].(float64)))

	match := fmt.Sprintf(`{"providerId":%d}`, providerID)
	rec, body = do(t, e, http.MethodPost, reqPath+"/match", seeker, match)
	if rec.Code != http.StatusOK || body["status"] != "MATCHED" {
		t.Fatalf("match: %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = do(t, e, http.MethodPost, reqPath+"/match", seeker, match)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second match: expected 409, got %d", rec.Code)
	}

	rec, _ = do(t, e, http.MethodPost, reqPath+"/respond", seeker, `{"decision":"ACCEPT"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("seeker respond: expected 403, got %d", rec.Code)
	}

	rec, body = do(t, e, http.MethodPost, reqPath+"/respond", provider, `{"decision":"ACCEPT"}`)
	if rec.Code != http.StatusOK || body["status"] != "ACCEPTED" {
		t.Fatalf("respond: %d %s", rec.Code, rec.Body.String())
	}
	if body["estimatedCost"] != nil {
		t.Fatalf("no hourly rate set, expected no cost: %v", body["estimatedCost"])
	}

	rec, body = do(t, e, http.MethodGet, "/api/care-requests", provider, "")
	if rec.Code != http.StatusOK || body["count"] != float64(1) {
		t.Fatalf("provider list: %d %s", rec.Code, rec.Body.String())
	}

	rec, body = do(t, e, http.MethodPost, reqPath+"/complete", provider, "")
	if rec.Code != http.StatusOK || body["status"] != "COMPLETED" {
		t.Fatalf("complete: %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = do(t, e, http.MethodPatch, reqPath, seeker, `{"description":"too late"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("edit closed request: expected 422, got %d", rec.Code)
	}
}

func TestRouter_AccessControl(t *testing.T) {
	e := newTestRouter(t)
	seeker, _ := signUp(t, e, "alice", "SEEKER")
	provider, _ := signUp(t, e, "bob", "PROVIDER")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		want   int
	}{
		{"no token", http.MethodGet, "/api/user", "", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/user", "nope", "", http.StatusUnauthorized},
		{"seeker sets provider status", http.MethodPost, "/api/provider-status", seeker, `{"isOnline":true}`, http.StatusForbidden},
		{"provider opens request", http.MethodPost, "/api/care-requests", provider, `{"description":"help"}`, http.StatusForbidden},
		{"role chosen twice", http.MethodPost, "/api/user/role", seeker, `{"role":"PROVIDER"}`, http.StatusConflict},
		{"missing request", http.MethodGet, "/api/care-requests/999", seeker, "", http.StatusNotFound},
		{"duplicate username", http.MethodPost, "/api/register", "", `{"username":"alice","password":"secret1"}`, http.StatusConflict},
		{"wrong password", http.MethodPost, "/api/login", "", `{"username":"alice","password":"wrong-one"}`, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := do(t, e, tc.method, tc.path, tc.token, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, rec.Code, rec.Body.String())
			}
			if _, ok := body["error"]; !ok {
				t.Fatalf("expected error envelope, got %s", rec.Body.String())
			}
		})
	}
}

func TestRouter_IdempotentCreate(t *testing.T) {
	e := newTestRouter(t)
	seeker, _ := signUp(t, e, "alice", "SEEKER")

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/care-requests", strings.NewReader(`{"description":"company for my dad"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("Authorization", "Bearer "+seeker)
		req.Header.Set("Idempotency-Key", "k-1")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	if rec := send(); rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rec.Code)
	}
	if rec := send(); rec.Code != http.StatusOK {
		t.Fatalf("replay: expected 200, got %d", rec.Code)
	}

	_, body := do(t, e, http.MethodGet, "/api/care-requests", seeker, "")
	if body["count"] != float64(1) {
		t.Fatalf("expected one request, got %v", body["count"])
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	e := newTestRouter(t)

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_MetricsExposeRouteTemplates(t *testing.T) {
	e := newTestRouter(t)
	token, _ := signUp(t, e, "metrics-seeker", "SEEKER")

	if rec, _ := do(t, e, http.MethodGet, "/api/care-requests/999", token, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		"careneighbour_http_requests_total",
		`url="/api/care-requests/:id"`,
		`code="404"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %s", want)
		}
	}
}

func TestMetricsStatus(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"domain not found": {domain.ErrCareRequestNotFound, http.StatusNotFound},
		"http error":       {echo.NewHTTPError(http.StatusUnauthorized, "missing token"), http.StatusUnauthorized},
		"unknown":          {fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		if got := metricsStatus(c, tc.err); got != tc.want {
			t.Errorf("%s: expected %d, got %d", name, tc.want, got)
		}
	}
}
