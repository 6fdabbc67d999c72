package booking

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/domain/catalog"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

type Handler struct {
	svc *BookingService
}

func NewHandler(svc *BookingService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group, admin *echo.Group) {
	api.GET("/availability", h.Availability)
	api.POST("/bookings", h.CreateBooking)
	api.GET("/bookings", h.ListOwnBookings)
	api.GET("/bookings/:id", h.GetBooking)
	api.PATCH("/bookings/:id/cancel", h.CancelBooking)

	admin.GET("/bookings", h.ListBookings)
	admin.PATCH("/bookings/:id/status", h.ChangeStatus)
	admin.GET("/bookings/:id/log", h.StatusLog)
	admin.GET("/blocks", h.ListBlocks)
	admin.POST("/blocks", h.CreateBlock)
	admin.DELETE("/blocks/:id", h.DeleteBlock)
}

// httpError maps domain sentinels to HTTP statuses. Unknown errors surface
// as a generic 500; the cause is logged by the request middleware.
func httpError(err error) error {
	switch {
	case errors.Is(err, catalog.ErrInvalidServiceSelection),
		errors.Is(err, ErrOutOfBookingWindow),
		errors.Is(err, ErrOutsideWorkingHours):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSlotConflict),
		errors.Is(err, ErrTooLateToCancel),
		errors.Is(err, ErrNotCancellable),
		errors.Is(err, ErrInvalidStatusTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrBlockNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

type createBookingRequest struct {
	Selections []catalog.Selection `json:"selections"`
	ServiceIDs []uuid.UUID         `json:"service_ids"`
	StartAt    time.Time           `json:"start_at"`
	Notes      *string             `json:"notes"`
}

func (r *createBookingRequest) selections() []catalog.Selection {
	if len(r.Selections) > 0 {
		return r.Selections
	}
	return catalog.SelectionsFromIDs(r.ServiceIDs)
}

type createBookingResponse struct {
	Booking *Booking       `json:"booking"`
	Quote   *catalog.Quote `json:"quote"`
}

func (h *Handler) CreateBooking(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.StartAt.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "start_at is required")
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	b, quote, err := h.svc.CreateBooking(c.Request().Context(), userID, req.selections(), req.StartAt, req.Notes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, createBookingResponse{Booking: b, Quote: quote})
}

func (h *Handler) GetBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) != auth.RoleAdmin && b.UserID != auth.UserIDFromContext(ctx) {
		return httpError(ErrNotOwner)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListOwnBookings(c echo.Context) error {
	pg := pagination.FromContext(c)
	userID := auth.UserIDFromContext(c.Request().Context())
	items, total, err := h.svc.ListUserBookings(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CancelBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	b, err := h.svc.Cancel(c.Request().Context(), id, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

// Availability serves both day and month mode; exactly one of date/month
// must be present.
func (h *Handler) Availability(c echo.Context) error {
	date := c.QueryParam("date")
	month := c.QueryParam("month")
	if (date == "") == (month == "") {
		return echo.NewHTTPError(http.StatusBadRequest, "exactly one of date or month is required")
	}

	selections, err := parseServiceIDs(c.QueryParam("service_ids"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service_ids")
	}

	if date != "" {
		result, err := h.svc.AvailabilityForDay(c.Request().Context(), date, selections)
		if err != nil {
			if errors.Is(err, catalog.ErrInvalidServiceSelection) {
				return httpError(err)
			}
			if strings.Contains(err.Error(), "invalid date") {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			return httpError(err)
		}
		return c.JSON(http.StatusOK, result)
	}

	result, err := h.svc.AvailabilityForMonth(c.Request().Context(), month, selections)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidServiceSelection) {
			return httpError(err)
		}
		if strings.Contains(err.Error(), "invalid month") {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func parseServiceIDs(raw string) ([]catalog.Selection, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return catalog.SelectionsFromIDs(ids), nil
}

// -- admin handlers --

func (h *Handler) ListBookings(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBookings(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type changeStatusRequest struct {
	Status string  `json:"status"`
	Note   *string `json:"note"`
}

func (h *Handler) ChangeStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req changeStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}

	b, err := h.svc.ChangeStatus(c.Request().Context(), id, req.Status, req.Note)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) StatusLog(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	entries, err := h.svc.StatusLog(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if entries == nil {
		entries = []*StatusLogEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

type createBlockRequest struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Note     *string   `json:"note"`
}

func (h *Handler) CreateBlock(c echo.Context) error {
	var req createBlockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "starts_at and ends_at are required")
	}
	if !req.StartsAt.Before(req.EndsAt) {
		return echo.NewHTTPError(http.StatusBadRequest, "starts_at must be before ends_at")
	}

	b, err := h.svc.CreateBlock(c.Request().Context(), req.StartsAt, req.EndsAt, req.Note)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) DeleteBlock(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteBlock(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListBlocks(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBlocks(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
