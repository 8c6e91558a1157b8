package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neobase-ai/internal/apis/dtos"
	"neobase-ai/internal/executor"
)

type CancelHandler struct {
	cancellable *executor.CancellableExecutor
}

func NewCancelHandler(cancellable *executor.CancellableExecutor) *CancelHandler {
	return &CancelHandler{cancellable: cancellable}
}

// ByRequestID handles POST /api/v1/cancel-by-request-id/{id}.
func (h *CancelHandler) ByRequestID(c *gin.Context) {
	h.cancellable.CancelByRequestID(c.Param("id"))
	c.JSON(http.StatusOK, dtos.Ok(gin.H{"cancelled": true}))
}

// ByPageID handles POST /api/v1/cancel-by-page-id/{id}.
func (h *CancelHandler) ByPageID(c *gin.Context) {
	h.cancellable.CancelByPageID(c.Param("id"))
	c.JSON(http.StatusOK, dtos.Ok(gin.H{"cancelled": true}))
}
