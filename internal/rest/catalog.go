package rest

import (
	"context"
	"net/http"
	"time"

	"recohub/domain"
	"recohub/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

type CatalogService interface {
	Upsert(ctx context.Context, item *domain.CatalogItem) error
	GetByProductID(ctx context.Context, tenantID, productID string) (domain.CatalogItem, error)
}

type CatalogHandler struct {
	validate *validator.Validate
	service  CatalogService
	timeout  time.Duration
}

func NewCatalogHandler(service CatalogService) *CatalogHandler {
	return &CatalogHandler{
		validate: validator.New(),
		service:  service,
		timeout:  10 * time.Second,
	}
}

type UpsertCatalogItemRequest struct {
	ProductID  string         `json:"product_id" validate:"required"`
	Name       string         `json:"name" validate:"required"`
	Category   string         `json:"category"`
	Price      float64        `json:"price" validate:"gte=0"`
	ImageURL   string         `json:"image_url"`
	Attributes map[string]any `json:"attributes"`
	Available  *bool          `json:"available"`
}

// POST /api/v1/catalog/items
func (h *CatalogHandler) Upsert(c echo.Context) error {
	tenantID, ok := c.Get("tenant_id").(string)
	if !ok || tenantID == "" {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req UpsertCatalogItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	item := domain.CatalogItem{
		TenantID:   tenantID,
		ProductID:  req.ProductID,
		Name:       req.Name,
		Category:   req.Category,
		Price:      req.Price,
		ImageURL:   req.ImageURL,
		Attributes: datatypes.JSONMap(req.Attributes),
		Available:  available,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.service.Upsert(ctx, &item); err != nil {
		logger.Error("failed to upsert catalog item", "tenant_id", tenantID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "failed to upsert catalog item"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(item))
}

// GET /api/v1/catalog/items/:id
func (h *CatalogHandler) GetByProductID(c echo.Context) error {
	tenantID, ok := c.Get("tenant_id").(string)
	if !ok || tenantID == "" {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	item, err := h.service.GetByProductID(ctx, tenantID, c.Param("id"))
	if err != nil {
		if err.Error() == "catalog item not found" {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(item))
}
