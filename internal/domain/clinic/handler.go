package clinic

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *ClinicService
}

func NewHandler(svc *ClinicService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/settings", h.GetSettings)
	admin.PUT("/settings", h.UpdateSettings)
	admin.GET("/practitioner", h.GetPractitioner)
}

func (h *Handler) GetSettings(c echo.Context) error {
	settings, err := h.svc.Settings(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load settings")
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *Handler) UpdateSettings(c echo.Context) error {
	var settings Settings
	if err := c.Bind(&settings); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.UpdateSettings(c.Request().Context(), &settings); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *Handler) GetPractitioner(c echo.Context) error {
	p, err := h.svc.DefaultPractitioner(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load practitioner")
	}
	return c.JSON(http.StatusOK, p)
}
