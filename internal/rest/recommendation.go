package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"recohub/business/recommendation"
	"recohub/domain"
	"recohub/pkg/logger"
	"recohub/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type RecommendationService interface {
	GetRecommendations(ctx context.Context, req recommendation.Request) (*recommendation.Response, error)
}

type RecommendationHandler struct {
	validate *validator.Validate
	service  RecommendationService
	timeout  time.Duration
}

func NewRecommendationHandler(service RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		validate: validator.New(),
		service:  service,
		timeout:  10 * time.Second,
	}
}

type RecommendationQuery struct {
	UserID      string `query:"user_id" validate:"required"`
	Limit       int    `query:"limit" validate:"omitempty,gte=1,lte=50"`
	Strategy    string `query:"strategy" validate:"omitempty,oneof=trending collaborative content_based frequently_bought_together"`
	ProductID   string `query:"product_id"`
	PlacementID string `query:"placement_id"`
	Exclude     string `query:"exclude"` // comma-separated product IDs
}

// GET /api/v1/recommendations
func (h *RecommendationHandler) Get(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.RecommendLatency.Observe(time.Since(start).Seconds())
	}()

	tenantID, ok := c.Get("tenant_id").(string)
	if !ok || tenantID == "" {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q RecommendationQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	// explicit FBT requests must carry a product context; the implicit path
	// (tenant default / experiment) falls back to trending instead
	if q.Strategy == string(domain.StrategyFBT) && q.ProductID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "product_id is required for frequently_bought_together"})
	}

	var exclude []string
	if q.Exclude != "" {
		for _, pid := range strings.Split(q.Exclude, ",") {
			if pid = strings.TrimSpace(pid); pid != "" {
				exclude = append(exclude, pid)
			}
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp, err := h.service.GetRecommendations(ctx, recommendation.Request{
		TenantID:    tenantID,
		UserID:      q.UserID,
		Limit:       q.Limit,
		Strategy:    domain.Strategy(q.Strategy),
		ProductID:   q.ProductID,
		PlacementID: q.PlacementID,
		Exclude:     exclude,
	})
	if err != nil {
		logger.Error("failed to get recommendations",
			"tenant_id", tenantID, "user_id", q.UserID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "failed to get recommendations"})
	}

	return c.JSON(http.StatusOK, resp)
}
