// Package match exposes ad-hoc reconciliation over HTTP.
package match

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/AryaKesharwani/erp-next-contract/pkg/matching"
	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
	"github.com/AryaKesharwani/erp-next-contract/pkg/registry"
)

// Request is the ad-hoc reconciliation request body.
type Request struct {
	PrimaryName      string   `json:"primary_name" validate:"required"`
	AlternativeNames []string `json:"alternative_names" validate:"omitempty,dive,min=1"`
	Threshold        *float64 `json:"threshold" validate:"omitempty,gte=0,lte=1"`
}

// Handler serves reconciliation requests against the cached registry.
type Handler struct {
	matcher          *matching.Matcher
	registry         registry.Provider
	defaultThreshold float64
	validate         *validator.Validate
	logger           ectologger.Logger
}

// NewHandler creates a new match handler
func NewHandler(matcher *matching.Matcher, reg registry.Provider, defaultThreshold float64, logger ectologger.Logger) *Handler {
	return &Handler{
		matcher:          matcher,
		registry:         reg,
		defaultThreshold: defaultThreshold,
		validate:         validator.New(),
		logger:           logger,
	}
}

// Register registers match routes
func (h *Handler) Register(g *echo.Group) {
	g.POST("", h.Match)
}

// Match reconciles a candidate identity against the client registry
func (h *Handler) Match(c echo.Context) error {
	ctx := c.Request().Context()

	var req Request
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	candidate := models.CandidateIdentity{
		PrimaryName:      req.PrimaryName,
		AlternativeNames: req.AlternativeNames,
	}
	if err := matching.ValidateCandidate(candidate); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	threshold := h.defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	clients, err := h.registry.Clients(ctx)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to load client registry")
		return httperror.NewHTTPError(http.StatusBadGateway, "client registry unavailable")
	}

	decision := h.matcher.Match(candidate, clients, threshold)

	h.logger.WithContext(ctx).WithFields(map[string]any{
		"candidate":      candidate.PrimaryName,
		"recommendation": string(decision.Recommendation),
		"confidence":     decision.Confidence,
	}).Info("Ad-hoc reconciliation")

	return c.JSON(http.StatusOK, decision)
}
