package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
)

// ContextRole holds the caller's role once RequireRole has looked it up.
const ContextRole = "role"

// UserLookup is the slice of the user store RequireRole needs.
type UserLookup interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// RequireRole enforces role-based access control. Roles are not carried in
// the token because a user picks theirs after logging in, so the current
// role is read from the store on each request.
func RequireRole(users UserLookup, allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := c.Get(ContextUserID).(int64)
			if id <= 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			user, err := users.FindByID(c.Request().Context(), id)
			if errors.Is(err, domain.ErrNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
			}
			if err != nil {
				return err
			}

			if _, ok := allowed[user.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			c.Set(ContextRole, user.Role)
			return next(c)
		}
	}
}
