package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"recohub/business/experiment"
	"recohub/domain"
	"recohub/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ExperimentService interface {
	Create(ctx context.Context, req experiment.CreateRequest) (domain.Experiment, error)
	Get(ctx context.Context, tenantID, id string) (domain.Experiment, error)
	List(ctx context.Context, tenantID string) ([]domain.Experiment, error)
	UpdateStatus(ctx context.Context, tenantID, id, newStatus string) (domain.Experiment, error)
	Delete(ctx context.Context, tenantID, id string) error
	GetResults(ctx context.Context, tenantID, id string) (*experiment.ResultsResponse, error)
}

type ExperimentHandler struct {
	validate *validator.Validate
	service  ExperimentService
	timeout  time.Duration
}

func NewExperimentHandler(service ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{
		validate: validator.New(),
		service:  service,
		timeout:  10 * time.Second,
	}
}

type CreateExperimentRequest struct {
	TenantID        string `json:"tenant_id" validate:"required"`
	Name            string `json:"name" validate:"required"`
	ControlStrategy string `json:"control_strategy" validate:"required"`
	VariantStrategy string `json:"variant_strategy" validate:"required"`
	TrafficSplit    int    `json:"traffic_split" validate:"required,gte=1,lte=99"`
	Metric          string `json:"metric" validate:"required,oneof=ctr conversion_rate revenue_per_visitor"`
	PlacementID     string `json:"placement_id"`
}

type UpdateExperimentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=running paused completed"`
}

// POST /api/v1/admin/experiments
func (h *ExperimentHandler) Create(c echo.Context) error {
	var req CreateExperimentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	exp, err := h.service.Create(ctx, experiment.CreateRequest{
		TenantID:        req.TenantID,
		Name:            req.Name,
		ControlStrategy: domain.Strategy(req.ControlStrategy),
		VariantStrategy: domain.Strategy(req.VariantStrategy),
		TrafficSplit:    req.TrafficSplit,
		Metric:          req.Metric,
		PlacementID:     req.PlacementID,
	})
	if err != nil {
		logger.Error("failed to create experiment", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(exp))
}

// GET /api/v1/admin/experiments?tenant_id=...
func (h *ExperimentHandler) List(c echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	if tenantID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "tenant_id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	exps, err := h.service.List(ctx, tenantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(exps))
}

// GET /api/v1/admin/experiments/:id?tenant_id=...
func (h *ExperimentHandler) Get(c echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	if tenantID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "tenant_id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	exp, err := h.service.Get(ctx, tenantID, c.Param("id"))
	if err != nil {
		if errors.Is(err, experiment.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(exp))
}

// PATCH /api/v1/admin/experiments/:id/status?tenant_id=...
func (h *ExperimentHandler) UpdateStatus(c echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	if tenantID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "tenant_id is required"})
	}

	var req UpdateExperimentStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	exp, err := h.service.UpdateStatus(ctx, tenantID, c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, experiment.ErrNotFound):
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		case errors.Is(err, experiment.ErrInvalidTransition), errors.Is(err, experiment.ErrPlacementBusy):
			return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
		}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(exp))
}

// DELETE /api/v1/admin/experiments/:id?tenant_id=...
func (h *ExperimentHandler) Delete(c echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	if tenantID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "tenant_id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.service.Delete(ctx, tenantID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, experiment.ErrNotFound):
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		case errors.Is(err, experiment.ErrExperimentActive):
			return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
		}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("experiment deleted"))
}

// GET /api/v1/admin/experiments/:id/results?tenant_id=...
func (h *ExperimentHandler) GetResults(c echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	if tenantID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "tenant_id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	results, err := h.service.GetResults(ctx, tenantID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, experiment.ErrNotFound):
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		case errors.Is(err, experiment.ErrResultsIncomplete):
			return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
		}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(results))
}
