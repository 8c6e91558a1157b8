package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neobase-ai/internal/apis/dtos"
	"neobase-ai/internal/catalog"
	"neobase-ai/internal/columnvalues"
)

type ColumnValuesHandler struct {
	catalog *catalog.Cache
	values  *columnvalues.Service
}

func NewColumnValuesHandler(cat *catalog.Cache, values *columnvalues.Service) *ColumnValuesHandler {
	return &ColumnValuesHandler{catalog: cat, values: values}
}

// Submit handles POST /api/v1/{app_id}/column-values/submit.
func (h *ColumnValuesHandler) Submit(c *gin.Context) {
	appID := c.Param("app_id")

	var req dtos.ColumnValuesSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Err(errMsg))
		return
	}

	full, err := catalog.ParseFullID(req.ColumnID)
	if err != nil {
		errMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Err(errMsg))
		return
	}
	ds, ok := h.catalog.Datasource(appID, full.DatasourceID)
	if !ok {
		c.JSON(http.StatusBadRequest, dtos.Err("unknown datasource"))
		return
	}

	from, to, err := parseDateInterval(req.DateInterval)
	if err != nil {
		errMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Err(errMsg))
		return
	}

	values, err := h.values.Execute(c.Request.Context(), columnvalues.Query{
		Datasource:   ds,
		ColumnID:     full.ID,
		DateInterval: catalog.NewDatetimeInterval(from, to),
	})
	if err != nil {
		writeAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Ok(gin.H{"values": values}))
}
