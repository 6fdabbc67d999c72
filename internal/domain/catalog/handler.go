package catalog

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

type Handler struct {
	svc *CatalogService
}

func NewHandler(svc *CatalogService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group, admin *echo.Group) {
	api.GET("/services", h.ListActiveServices)
	api.POST("/quote", h.Quote)

	admin.GET("/services", h.ListServices)
	admin.POST("/services", h.CreateService)
	admin.GET("/services/:id", h.GetService)
	admin.PUT("/services/:id", h.UpdateService)
	admin.DELETE("/services/:id", h.DeleteService)

	admin.GET("/promotions", h.ListPromotions)
	admin.POST("/promotions", h.CreatePromotion)
	admin.GET("/promotions/:id", h.GetPromotion)
	admin.PUT("/promotions/:id", h.UpdatePromotion)
	admin.DELETE("/promotions/:id", h.DeletePromotion)
}

// quoteRequest accepts either normalized selections or a legacy bare id
// list; the bare list is adapted to quantity-one selections.
type quoteRequest struct {
	Selections []Selection `json:"selections"`
	ServiceIDs []uuid.UUID `json:"service_ids"`
}

func (r *quoteRequest) selections() []Selection {
	if len(r.Selections) > 0 {
		return r.Selections
	}
	return SelectionsFromIDs(r.ServiceIDs)
}

func (h *Handler) Quote(c echo.Context) error {
	var req quoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	quote, err := h.svc.ResolveQuote(c.Request().Context(), req.selections())
	if err != nil {
		if errors.Is(err, ErrInvalidServiceSelection) {
			return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidServiceSelection.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve quote")
	}
	return c.JSON(http.StatusOK, quote)
}

func (h *Handler) ListActiveServices(c echo.Context) error {
	items, err := h.svc.ListActiveServices(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list services")
	}
	if items == nil {
		items = []*Service{}
	}
	return c.JSON(http.StatusOK, items)
}

// -- Service admin handlers --

func (h *Handler) CreateService(c echo.Context) error {
	var svc Service
	if err := c.Bind(&svc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateService(c.Request().Context(), &svc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, svc)
}

func (h *Handler) GetService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	svc, err := h.svc.GetService(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "service not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *Handler) UpdateService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var svc Service
	if err := c.Bind(&svc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	svc.ID = id
	if err := h.svc.UpdateService(c.Request().Context(), &svc); err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "service not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *Handler) DeleteService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteService(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "service not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete service")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListServices(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListServices(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list services")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Promotion admin handlers --

func (h *Handler) CreatePromotion(c echo.Context) error {
	var p Promotion
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreatePromotion(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPromotion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPromotion(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrPromotionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "promotion not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get promotion")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePromotion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Promotion
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.ID = id
	if err := h.svc.UpdatePromotion(c.Request().Context(), &p); err != nil {
		if errors.Is(err, ErrPromotionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "promotion not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePromotion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeletePromotion(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrPromotionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "promotion not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete promotion")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListPromotions(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPromotions(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list promotions")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
