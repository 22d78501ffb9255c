package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
)

func TestHTTPErrorHandler_MapsDomainKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("description is required"), http.StatusBadRequest},
		{"not found", fmt.Errorf("get request: %w", domain.ErrCareRequestNotFound), http.StatusNotFound},
		{"forbidden", fmt.Errorf("respond: %w", domain.ErrForbidden), http.StatusForbidden},
		{"conflict", domain.ErrUserExists, http.StatusConflict},
		{"invalid transition", fmt.Errorf("match: %w", domain.ErrInvalidTransition), http.StatusConflict},
		{"status changed", domain.ErrStatusChanged, http.StatusConflict},
		{"unmodifiable", domain.ErrUnmodifiable, http.StatusUnprocessableEntity},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"echo error", echo.NewHTTPError(http.StatusTeapot, "short and stout"), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			h(tc.err, c)

			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error == "" {
				t.Fatalf("expected error message")
			}
		})
	}
}

func TestHTTPErrorHandler_HidesInternalDetails(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("mongo: connection refused"), c)

	var body errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != "internal server error" {
		t.Fatalf("unexpected message %q", body.Error)
	}
}
