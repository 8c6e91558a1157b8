package routes

import (
	"github.com/gin-gonic/gin"

	"neobase-ai/internal/apis/handlers"
	"neobase-ai/internal/middleware"
)

// Handlers bundles every handler cmd/main.go wires from internal/di, so
// SetupRoutes stays a single call site mirroring the teacher's per-feature
// SetupXRoutes(router) functions collapsed into the one surface this
// service exposes.
type Handlers struct {
	Chart        *handlers.ChartHandler
	ColumnValues *handlers.ColumnValuesHandler
	EventErrors  *handlers.EventErrorsHandler
	Cancel       *handlers.CancelHandler
	Catalog      *handlers.CatalogHandler
}

// SetupRoutes registers every spec.md §6 endpoint plus the supplemented
// event-errors endpoint (SPEC_FULL.md §5), bearer-auth protecting every
// /api/v1 endpoint: submit, cancel and the catalog reads.
func SetupRoutes(router *gin.Engine, h Handlers, jwtSecret string) {
	v1 := router.Group("/api/v1")
	v1.Use(middleware.BearerAuth(jwtSecret))
	{
		v1.POST("/:app_id/charts/submit", h.Chart.Submit)
		v1.POST("/:app_id/column-values/submit", h.ColumnValues.Submit)
		v1.POST("/:app_id/event-errors/submit", h.EventErrors.Submit)

		v1.POST("/cancel-by-request-id/:id", h.Cancel.ByRequestID)
		v1.POST("/cancel-by-page-id/:id", h.Cancel.ByPageID)

		v1.GET("/:app_id/datasources", h.Catalog.Datasources)
		v1.GET("/:app_id/event-datasources", h.Catalog.EventDatasources)
		v1.GET("/:app_id/datasources-freshness", h.Catalog.DatasourcesFreshness)
	}
}
