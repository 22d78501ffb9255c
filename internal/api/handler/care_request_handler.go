package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/MahathirML/CareNeighbour/internal/api/metrics"
	"github.com/MahathirML/CareNeighbour/internal/core/domain"
	"github.com/MahathirML/CareNeighbour/internal/core/ports"
)

// HeaderIdempotencyKey lets a seeker retry creation without opening a second request.
const HeaderIdempotencyKey = "Idempotency-Key"

// CareRequestHandler exposes the care request lifecycle.
type CareRequestHandler struct {
	service ports.RequestService
}

func NewCareRequestHandler(service ports.RequestService) *CareRequestHandler {
	return &CareRequestHandler{service: service}
}

// Create handles POST /api/care-requests.
//
// @Summary      Open a care request
// @Tags         care-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                    false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createCareRequestRequest  true   "Request details"
// @Success      201              {object}  careRequestResponse
// @Success      200              {object}  careRequestResponse  "Replayed idempotent request"
// @Failure      400              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Router       /api/care-requests [post]
func (h *CareRequestHandler) Create(c echo.Context) error {
	seekerID, err := actorID(c)
	if err != nil {
		return err
	}

	var req createCareRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return observe("create", err)
	}

	result, err := h.service.CreateRequest(c.Request().Context(), ports.CreateRequestInput{
		SeekerID:        seekerID,
		Description:     req.Description,
		Location:        req.Location,
		Coordinates:     req.Coordinates.toDomain(),
		DurationMinutes: req.DurationMinutes,
		ScheduledFor:    req.ScheduledFor,
		IdempotencyKey:  c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return observe("create", err)
	}

	metrics.CareRequestsCreatedTotal.WithLabelValues(strconv.FormatBool(result.AlreadyExisted)).Inc()
	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, toCareRequestResponse(result.Request))
}

// List handles GET /api/care-requests.
//
// @Summary      List the caller's care requests
// @Description  Seekers see the requests they opened; providers see those assigned to them.
// @Tags         care-requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  careRequestListResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/care-requests [get]
func (h *CareRequestHandler) List(c echo.Context) error {
	id, err := actorID(c)
	if err != nil {
		return err
	}

	reqs, err := h.service.ListForActor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCareRequestList(reqs))
}

// Get handles GET /api/care-requests/:id.
//
// @Summary      Get a care request
// @Tags         care-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Care request id"
// @Success      200  {object}  careRequestResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/care-requests/{id} [get]
func (h *CareRequestHandler) Get(c echo.Context) error {
	actor, requestID, err := actorAndRequest(c)
	if err != nil {
		return err
	}

	req, err := h.service.GetRequest(c.Request().Context(), requestID, actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCareRequestResponse(req))
}

// Edit handles PATCH /api/care-requests/:id.
//
// @Summary      Edit a care request
// @Tags         care-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                     true  "Care request id"
// @Param        body  body      editCareRequestRequest  true  "Fields to change"
// @Success      200   {object}  careRequestResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/care-requests/{id} [patch]
func (h *CareRequestHandler) Edit(c echo.Context) error {
	actor, requestID, err := actorAndRequest(c)
	if err != nil {
		return err
	}

	var req editCareRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return observe("edit", err)
	}

	updated, err := h.service.EditRequest(c.Request().Context(), requestID, actor, ports.EditRequestInput{
		Description:     req.Description,
		Location:        req.Location,
		Coordinates:     req.Coordinates.toDomain(),
		DurationMinutes: req.DurationMinutes,
		ScheduledFor:    req.ScheduledFor,
	})
	if err != nil {
		return observe("edit", err)
	}
	return c.JSON(http.StatusOK, toCareRequestResponse(updated))
}

// Match handles POST /api/care-requests/:id/match.
//
// @Summary      Match a provider to a pending request
// @Tags         care-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int           true  "Care request id"
// @Param        body  body      matchRequest  true  "Provider to match"
// @Success      200   {object}  careRequestResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/care-requests/{id}/match [post]
func (h *CareRequestHandler) Match(c echo.Context) error {
	actor, requestID, err := actorAndRequest(c)
	if err != nil {
		return err
	}

	var req matchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return observe("match", err)
	}

	updated, err := h.service.MatchProvider(c.Request().Context(), requestID, actor, req.ProviderID)
	if err != nil {
		return observe("match", err)
	}
	return transitioned(c, updated)
}

// Respond handles POST /api/care-requests/:id/respond.
//
// @Summary      Accept or decline a match
// @Tags         care-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Care request id"
// @Param        body  body      respondRequest  true  "ACCEPT or DECLINE"
// @Success      200   {object}  careRequestResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/care-requests/{id}/respond [post]
func (h *CareRequestHandler) Respond(c echo.Context) error {
	actor, requestID, err := actorAndRequest(c)
	if err != nil {
		return err
	}

	var req respondRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return observe("respond", err)
	}

	updated, err := h.service.RespondToMatch(c.Request().Context(), requestID, actor, domain.MatchDecision(req.Decision))
	if err != nil {
		return observe("respond", err)
	}
	return transitioned(c, updated)
}

// Cancel handles POST /api/care-requests/:id/cancel.
//
// @Summary      Cancel a care request
// @Tags         care-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Care request id"
// @Success      200  {object}  careRequestResponse
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/care-requests/{id}/cancel [post]
func (h *CareRequestHandler) Cancel(c echo.Context) error {
	actor, requestID, err := actorAndRequest(c)
	if err != nil {
		return err
	}

	updated, err := h.service.Cancel(c.Request().Context(), requestID, actor)
	if err != nil {
		return observe("cancel", err)
	}
	return transitioned(c, updated)
}

// Complete handles POST /api/care-requests/:id/complete.
//
// @Summary      Mark an accepted request as completed
// @Tags         care-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Care request id"
// @Success      200  {object}  careRequestResponse
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/care-requests/{id}/complete [post]
func (h *CareRequestHandler) Complete(c echo.Context) error {
	actor, requestID, err := actorAndRequest(c)
	if err != nil {
		return err
	}

	updated, err := h.service.Complete(c.Request().Context(), requestID, actor)
	if err != nil {
		return observe("complete", err)
	}
	return transitioned(c, updated)
}

func actorAndRequest(c echo.Context) (int64, int64, error) {
	actor, err := actorID(c)
	if err != nil {
		return 0, 0, err
	}
	requestID, err := pathID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	return actor, requestID, nil
}

func transitioned(c echo.Context, r *domain.CareRequest) error {
	metrics.CareRequestTransitionsTotal.WithLabelValues(string(r.Status)).Inc()
	return c.JSON(http.StatusOK, toCareRequestResponse(r))
}

// observe counts a rejected lifecycle operation and returns err unchanged.
func observe(op string, err error) error {
	metrics.CareRequestErrorsTotal.WithLabelValues(op, errorReason(err)).Inc()
	return err
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrUnmodifiable):
		return "invalid_state"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	}
	return "internal"
}
