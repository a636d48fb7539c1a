// Package mapping exposes stored reconciliation decisions over HTTP.
package mapping

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/AryaKesharwani/erp-next-contract/internal/repositories/mappingresult"
)

// Handler serves stored mapping results.
type Handler struct {
	repo *mappingresult.Repository
}

// NewHandler creates a new mapping handler
func NewHandler(repo *mappingresult.Repository) *Handler {
	return &Handler{repo: repo}
}

// Register registers mapping routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
}

// List lists recent mapping results with optional filters
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	recommendation := c.QueryParam("recommendation")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	results, err := h.repo.List(ctx, recommendation, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, results)
}

// Get gets a mapping result by ID
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.repo.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
