package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"neobase-ai/internal/apis/dtos"
	"neobase-ai/internal/apperrors"
	"neobase-ai/internal/catalog"
	"neobase-ai/internal/chartpipeline"
	"neobase-ai/internal/chartservice"
	"neobase-ai/internal/tabular"
)

const dateLayout = "2006-01-02"

type ChartHandler struct {
	charts *chartservice.Service
}

func NewChartHandler(charts *chartservice.Service) *ChartHandler {
	return &ChartHandler{charts: charts}
}

// Submit handles POST /api/v1/{app_id}/charts/submit.
func (h *ChartHandler) Submit(c *gin.Context) {
	appID := c.Param("app_id")

	var req dtos.ChartSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Err(errMsg))
		return
	}

	chartReq, err := toChartServiceRequest(appID, req)
	if err != nil {
		errMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Err(errMsg))
		return
	}

	result, err := h.charts.Submit(c.Request.Context(), chartReq)
	if err != nil {
		writeAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Ok(toChartResponse(result)))
}

func toChartServiceRequest(appID string, req dtos.ChartSubmitRequest) (chartservice.Request, error) {
	from, to, err := parseDateInterval(req.DateInterval)
	if err != nil {
		return chartservice.Request{}, err
	}

	out := chartservice.Request{
		AppID:         appID,
		PageID:        orNewID(req.PageID),
		RequestID:     orNewID(req.RequestID),
		KpiID:         req.KpiID,
		XAxisColumnID: req.XAxisColumnID,
		TimeGrain:     catalog.TimeGrain(req.TimeGrain),
		DateInterval:  catalog.NewDatetimeInterval(from, to),
		GroupBys:      req.GroupBys,
		SortByKpiID:   req.SortByKpiID,
		GroupByLimit:  req.GroupByLimit,
	}

	if req.CompareInterval != nil {
		cFrom, cTo, err := parseDateInterval(*req.CompareInterval)
		if err != nil {
			return chartservice.Request{}, err
		}
		out.HasCompare = true
		out.CompareInterval = catalog.NewDatetimeInterval(cFrom, cTo)
	}

	for _, f := range req.Filters {
		out.Filters = append(out.Filters, chartservice.FilterRequest{
			ColumnID: f.ColumnID,
			Operator: catalog.FilterOperator(f.Operator),
			Values:   f.Values,
			DataType: catalog.NormalizeDataType(f.DataType),
		})
	}

	return out, nil
}

func parseDateInterval(d dtos.DateIntervalRequest) (time.Time, time.Time, error) {
	from, err := time.Parse(dateLayout, d.From)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date_interval.from: %w", err)
	}
	to, err := time.Parse(dateLayout, d.To)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date_interval.to: %w", err)
	}
	return from.UTC(), to.UTC(), nil
}

func orNewID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func toChartResponse(r *chartpipeline.Result) dtos.ChartResponse {
	resp := dtos.ChartResponse{
		Data:  toPoints(r.Data),
		Total: toPoints(r.Total),
		Unit:  r.Unit,
	}
	if r.SingleTotal != nil && len(r.SingleTotal.Rows) > 0 {
		resp.SingleTotal = r.SingleTotal.Rows[0].Value
	}
	if r.CompareData != nil {
		resp.CompareData = toPoints(r.CompareData)
	}
	if r.CompareTotal != nil {
		resp.CompareTotal = toPoints(r.CompareTotal)
	}
	if r.CompareSingleTotal != nil && len(r.CompareSingleTotal.Rows) > 0 {
		v := r.CompareSingleTotal.Rows[0].Value
		resp.CompareSingleTotal = &v
	}
	return resp
}

func toPoints(r *tabular.TabularDataResult) []dtos.ChartPointResponse {
	if r == nil {
		return nil
	}
	points := make([]dtos.ChartPointResponse, 0, len(r.Rows))
	for _, row := range r.Rows {
		points = append(points, dtos.ChartPointResponse{
			XAxis:   row.XAxis,
			GroupBy: row.GroupBy,
			Value:   row.Value,
		})
	}
	return points
}

// writeAppError translates an apperrors kind into the HTTP status/message
// spec.md §6 and §7 document.
func writeAppError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	msg := apperrors.Message(err)
	c.JSON(status, dtos.Err(msg))
}
