package api

import (
	"errors"
	"net/http"
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
)

var (
	httpMetricsOnce sync.Once
	httpMetrics     echo.MiddlewareFunc
)

// httpMetricsMiddleware returns the request metrics middleware. Its collectors
// live in the default registry, so every router shares one instance.
func httpMetricsMiddleware() echo.MiddlewareFunc {
	httpMetricsOnce.Do(func() {
		httpMetrics = echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:                 "careneighbour",
			Subsystem:                 "http",
			DoNotUseRequestPathFor404: true,
			StatusCodeResolver:        metricsStatus,
		})
	})
	return httpMetrics
}

// metricsStatus resolves the status the error handler will write, since the
// metrics middleware runs before the error reaches it.
func metricsStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	if code, ok := StatusFor(err); ok {
		return code
	}
	return http.StatusInternalServerError
}
