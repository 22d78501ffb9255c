package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/MahathirML/CareNeighbour/docs"
	"github.com/MahathirML/CareNeighbour/internal/api/handler"
	"github.com/MahathirML/CareNeighbour/internal/api/middleware"
	"github.com/MahathirML/CareNeighbour/internal/core/domain"
	"github.com/MahathirML/CareNeighbour/internal/core/ports"
	"github.com/MahathirML/CareNeighbour/internal/infrastructure/http/handlers"
	"github.com/MahathirML/CareNeighbour/internal/infrastructure/ws"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	JWTSecret string
	Log       zerolog.Logger

	Users           middleware.UserLookup
	AuthService     ports.AuthService
	RequestService  ports.RequestService
	ProviderService ports.ProviderService

	Registry *ws.Registry
	Signals  ws.SignalQueue
	WS       ws.ClientConfig

	// Readiness lists the external dependencies checked by /health/ready.
	Readiness map[string]handlers.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORS())
	e.Use(requestLogger(d.Log))
	e.Use(httpMetricsMiddleware())

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	careHandler := handler.NewCareRequestHandler(d.RequestService)
	providerHandler := handler.NewProviderHandler(d.ProviderService)
	wsHandler := handler.NewWSHandler(d.Registry, d.Signals, d.WS, d.Log)
	auth := middleware.Auth(d.JWTSecret)

	// --- Auth routes ---
	e.POST("/api/register", authHandler.Register)
	e.POST("/api/login", authHandler.Login)

	api := e.Group("/api", auth)
	api.GET("/user", authHandler.Me)
	api.PATCH("/user", authHandler.UpdateProfile)
	api.POST("/user/role", authHandler.ChooseRole)

	// --- Care requests ---
	api.POST("/care-requests", careHandler.Create, middleware.RequireRole(d.Users, domain.RoleSeeker))
	api.GET("/care-requests", careHandler.List)
	api.GET("/care-requests/:id", careHandler.Get)
	api.PATCH("/care-requests/:id", careHandler.Edit)
	api.POST("/care-requests/:id/match", careHandler.Match)
	api.POST("/care-requests/:id/respond", careHandler.Respond)
	api.POST("/care-requests/:id/cancel", careHandler.Cancel)
	api.POST("/care-requests/:id/complete", careHandler.Complete)

	// --- Providers ---
	api.GET("/providers", providerHandler.ListAvailable)
	api.POST("/provider-status", providerHandler.SetStatus, middleware.RequireRole(d.Users, domain.RoleProvider))

	// --- Realtime ---
	e.GET("/ws", wsHandler.Connect, auth)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	log = log.With().Str("component", "http").Logger()
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Str("route", v.RoutePath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
