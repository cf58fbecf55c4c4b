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

type EventService interface {
	Ingest(ctx context.Context, ev *domain.Event) error
}

type EventHandler struct {
	validate *validator.Validate
	service  EventService
	timeout  time.Duration
}

func NewEventHandler(service EventService) *EventHandler {
	return &EventHandler{
		validate: validator.New(),
		service:  service,
		timeout:  10 * time.Second,
	}
}

type IngestEventRequest struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type" validate:"required"`
	UserID    string         `json:"user_id" validate:"required"`
	ProductID string         `json:"product_id" validate:"required"`
	SessionID string         `json:"session_id"`
	Metadata  map[string]any `json:"metadata"`
}

// POST /api/v1/events
func (h *EventHandler) Ingest(c echo.Context) error {
	tenantID, ok := c.Get("tenant_id").(string)
	if !ok || tenantID == "" {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req IngestEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if !domain.IsValidEventType(req.EventType) {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "unknown event type"})
	}

	ev := domain.Event{
		ID:        req.EventID,
		TenantID:  tenantID,
		EventType: req.EventType,
		UserID:    req.UserID,
		ProductID: req.ProductID,
		SessionID: req.SessionID,
		Metadata:  datatypes.JSONMap(req.Metadata),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.service.Ingest(ctx, &ev); err != nil {
		logger.Error("failed to ingest event", "tenant_id", tenantID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "failed to ingest event"})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(map[string]string{"event_id": ev.ID}))
}
