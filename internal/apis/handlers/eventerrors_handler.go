package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neobase-ai/internal/apis/dtos"
	"neobase-ai/internal/catalog"
	"neobase-ai/internal/eventerrors"
)

type EventErrorsHandler struct {
	eventErrors *eventerrors.Service
}

func NewEventErrorsHandler(svc *eventerrors.Service) *EventErrorsHandler {
	return &EventErrorsHandler{eventErrors: svc}
}

// Submit handles POST /api/v1/{app_id}/event-errors/submit (spec.md §5
// supplemented feature, grounded on original_source's event_errors API).
func (h *EventErrorsHandler) Submit(c *gin.Context) {
	appID := c.Param("app_id")

	var req dtos.EventErrorsSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Err(errMsg))
		return
	}

	from, to, err := parseDateInterval(req.DateInterval)
	if err != nil {
		errMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Err(errMsg))
		return
	}

	counts, err := h.eventErrors.Execute(c.Request.Context(), eventerrors.Query{
		AppID:        appID,
		EventName:    req.EventName,
		DateInterval: catalog.NewDatetimeInterval(from, to),
	})
	if err != nil {
		writeAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Ok(gin.H{"counts": counts}))
}
