// Package alert exposes the alert log over HTTP.
package alert

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/AryaKesharwani/erp-next-contract/internal/repositories/alertlog"
)

// Handler serves alert log entries.
type Handler struct {
	repo *alertlog.Repository
}

// NewHandler creates a new alert handler
func NewHandler(repo *alertlog.Repository) *Handler {
	return &Handler{repo: repo}
}

// Register registers alert routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
}

// List lists recent alerts with optional filters
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	alertType := c.QueryParam("type")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	entries, err := h.repo.List(ctx, alertType, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entries)
}
