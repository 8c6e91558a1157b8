package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neobase-ai/internal/apis/dtos"
	"neobase-ai/internal/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Cache
}

func NewCatalogHandler(cat *catalog.Cache) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// Datasources handles GET /api/v1/{app_id}/datasources.
func (h *CatalogHandler) Datasources(c *gin.Context) {
	app, ok := h.catalog.App(c.Param("app_id"))
	if !ok {
		c.JSON(http.StatusNotFound, dtos.Err("unknown app"))
		return
	}
	c.JSON(http.StatusOK, dtos.Ok(gin.H{"datasources": datasourceResponses(app.Datasources)}))
}

// EventDatasources handles GET /api/v1/{app_id}/event-datasources: the
// subset of an app's datasources whose id names one of its known events
// (original_source names event datasources after the event they carry;
// there is no separate "is_event" flag on the metadata document).
func (h *CatalogHandler) EventDatasources(c *gin.Context) {
	app, ok := h.catalog.App(c.Param("app_id"))
	if !ok {
		c.JSON(http.StatusNotFound, dtos.Err("unknown app"))
		return
	}

	snap := h.catalog.Get()
	var common catalog.CommonConfigs
	if snap != nil {
		common = snap.CommonConfigs
	}
	events := map[string]bool{}
	for _, name := range app.AllEventNames(common) {
		events[name] = true
	}

	filtered := make(map[string]catalog.DatasourceDTO, len(app.Datasources))
	for id, ds := range app.Datasources {
		if events[id] {
			filtered[id] = ds
		}
	}
	c.JSON(http.StatusOK, dtos.Ok(gin.H{"datasources": datasourceResponses(filtered)}))
}

// DatasourcesFreshness handles GET /api/v1/{app_id}/datasources-freshness.
func (h *CatalogHandler) DatasourcesFreshness(c *gin.Context) {
	app, ok := h.catalog.App(c.Param("app_id"))
	if !ok {
		c.JSON(http.StatusNotFound, dtos.Err("unknown app"))
		return
	}

	out := make([]dtos.FreshnessResponse, 0, len(app.Datasources))
	for id, dto := range app.Datasources {
		ds := dto.ToDatasource()
		entry := dtos.FreshnessResponse{ID: id}
		if ds.DataAvailability != nil {
			entry.HasDataUpTo = &ds.DataAvailability.DateTo
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, dtos.Ok(gin.H{"datasources": out}))
}

func datasourceResponses(m map[string]catalog.DatasourceDTO) []dtos.DatasourceResponse {
	out := make([]dtos.DatasourceResponse, 0, len(m))
	for id, dto := range m {
		ds := dto.ToDatasource()
		entry := dtos.DatasourceResponse{ID: id, WarehouseKind: ds.WarehouseKind}
		if ds.DataAvailability != nil {
			entry.HasDataFrom = &ds.DataAvailability.DateFrom
			entry.HasDataUpTo = &ds.DataAvailability.DateTo
		}
		out = append(out, entry)
	}
	return out
}
