package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
	"github.com/MahathirML/CareNeighbour/internal/core/ports"
)

// ProviderHandler exposes the provider directory.
type ProviderHandler struct {
	service ports.ProviderService
}

func NewProviderHandler(service ports.ProviderService) *ProviderHandler {
	return &ProviderHandler{service: service}
}

// ListAvailable handles GET /api/providers.
//
// @Summary      List online providers
// @Description  With lat and lon, providers are sorted by distance in miles; those without a location come last.
// @Tags         providers
// @Produce      json
// @Security     BearerAuth
// @Param        lat  query     number  false  "Reference latitude"
// @Param        lon  query     number  false  "Reference longitude"
// @Success      200  {object}  availableProvidersResponse
// @Failure      400  {object}  errorResponse
// @Router       /api/providers [get]
func (h *ProviderHandler) ListAvailable(c echo.Context) error {
	ref, err := referencePoint(c.QueryParam("lat"), c.QueryParam("lon"))
	if err != nil {
		return err
	}

	list, err := h.service.ListAvailable(c.Request().Context(), ref)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAvailableProviders(list))
}

// SetStatus handles POST /api/provider-status.
//
// @Summary      Set own availability
// @Tags         providers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      providerStatusRequest  true  "Availability and optional location"
// @Success      200   {object}  providerStatusResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/provider-status [post]
func (h *ProviderHandler) SetStatus(c echo.Context) error {
	id, err := actorID(c)
	if err != nil {
		return err
	}

	var req providerStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var loc *domain.Coordinates
	switch {
	case req.Lat != nil && req.Lon != nil:
		loc = &domain.Coordinates{Lat: *req.Lat, Lon: *req.Lon}
	case req.Lat != nil || req.Lon != nil:
		return domain.NewValidationError("lat and lon must be given together")
	}

	status, err := h.service.SetOnline(c.Request().Context(), id, *req.IsOnline, loc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProviderStatusResponse(status))
}

// referencePoint parses the optional lat/lon query pair. Both or neither must be set.
func referencePoint(latRaw, lonRaw string) (*domain.Coordinates, error) {
	if latRaw == "" && lonRaw == "" {
		return nil, nil
	}
	if latRaw == "" || lonRaw == "" {
		return nil, domain.NewValidationError("lat and lon must be given together")
	}

	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, domain.NewValidationError("lat must be a valid latitude")
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil || lon < -180 || lon > 180 {
		return nil, domain.NewValidationError("lon must be a valid longitude")
	}
	return &domain.Coordinates{Lat: lat, Lon: lon}, nil
}
