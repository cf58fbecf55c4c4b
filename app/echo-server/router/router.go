package router

import (
	"recohub/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, tenantAuth echo.MiddlewareFunc) {
	reco := api.Group("/recommendations", tenantAuth)
	reco.GET("", handler.Get)
}

func SetEventRoutes(api *echo.Group, handler *rest.EventHandler, tenantAuth echo.MiddlewareFunc) {
	events := api.Group("/events", tenantAuth)
	events.POST("", handler.Ingest)
}

func SetCatalogRoutes(api *echo.Group, handler *rest.CatalogHandler, tenantAuth echo.MiddlewareFunc) {
	catalog := api.Group("/catalog", tenantAuth)
	catalog.POST("/items", handler.Upsert)
	catalog.GET("/items/:id", handler.GetByProductID)
}

func SetTenantRoutes(api *echo.Group, handler *rest.TenantHandler, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin/tenants", adminOnly)
	admin.POST("", handler.Onboard)
}

func SetExperimentRoutes(api *echo.Group, handler *rest.ExperimentHandler, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin/experiments", adminOnly)

	admin.POST("", handler.Create)
	admin.GET("", handler.List)
	admin.GET("/:id", handler.Get)
	admin.PATCH("/:id/status", handler.UpdateStatus)
	admin.DELETE("/:id", handler.Delete)
	admin.GET("/:id/results", handler.GetResults)
}
