package rest

import (
	"context"
	"net/http"
	"time"

	"recohub/business/tenant"
	"recohub/domain"
	"recohub/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type TenantService interface {
	Onboard(ctx context.Context, name string, defaultStrategy domain.Strategy) (*tenant.Onboarded, error)
}

type TenantHandler struct {
	validate *validator.Validate
	service  TenantService
	timeout  time.Duration
}

func NewTenantHandler(service TenantService) *TenantHandler {
	return &TenantHandler{
		validate: validator.New(),
		service:  service,
		timeout:  10 * time.Second,
	}
}

type OnboardTenantRequest struct {
	Name            string `json:"name" validate:"required"`
	DefaultStrategy string `json:"default_strategy" validate:"omitempty,oneof=trending collaborative content_based frequently_bought_together"`
}

// POST /api/v1/admin/tenants
func (h *TenantHandler) Onboard(c echo.Context) error {
	var req OnboardTenantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.service.Onboard(ctx, req.Name, domain.Strategy(req.DefaultStrategy))
	if err != nil {
		logger.Error("failed to onboard tenant", "name", req.Name, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "failed to onboard tenant"})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(result))
}
