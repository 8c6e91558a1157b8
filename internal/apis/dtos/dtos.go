// Package dtos holds the wire shapes for internal/apis: request bodies
// bound by gin's ShouldBindJSON and the envelope every handler answers
// with, matching the teacher's dtos.Response{Success, Data, Error} shape.
package dtos

import "time"

// Response is the fixed envelope every handler answers with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *string `json:"error,omitempty"`
}

func Err(msg string) Response  { return Response{Success: false, Error: &msg} }
func Ok(data any) Response     { return Response{Success: true, Data: data} }

// DateIntervalRequest is the [from, to] wire shape for a date range,
// both inclusive, formatted "2006-01-02".
type DateIntervalRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// FilterRequest is one WHERE condition, column given as a
// "datasource_id.column_id" full id (catalog.ParseFullID).
type FilterRequest struct {
	ColumnID string   `json:"column_id" binding:"required"`
	Operator string   `json:"operator" binding:"required"`
	Values   []string `json:"values"`
	DataType string   `json:"data_type" binding:"required"`
}

// ChartSubmitRequest is the charts-submit endpoint's body (spec.md §6).
type ChartSubmitRequest struct {
	PageID    string `json:"page_id"`
	RequestID string `json:"request_id"`

	KpiID         string               `json:"kpi_id" binding:"required"`
	XAxisColumnID string               `json:"x_axis_column_id" binding:"required"`
	TimeGrain     string               `json:"time_grain"`
	DateInterval  DateIntervalRequest  `json:"date_interval" binding:"required"`

	CompareInterval *DateIntervalRequest `json:"compare_interval"`

	Filters      []FilterRequest `json:"filters"`
	GroupBys     []string        `json:"group_bys"`
	SortByKpiID  string          `json:"sort_by_kpi_id"`
	GroupByLimit int             `json:"group_by_limit"`
}

// ChartPointResponse is one x-axis point of a chart series, with its
// group-by tuple (empty when the request had no group-bys).
type ChartPointResponse struct {
	XAxis   any     `json:"x_axis"`
	GroupBy []any   `json:"group_by,omitempty"`
	Value   float64 `json:"value"`
}

// ChartResponse is the charts-submit endpoint's response body: the
// primary series plus its compare-period counterpart, if requested.
type ChartResponse struct {
	Data        []ChartPointResponse `json:"data"`
	Total       []ChartPointResponse `json:"total"`
	SingleTotal float64              `json:"single_total"`

	CompareData        []ChartPointResponse `json:"compare_data,omitempty"`
	CompareTotal        []ChartPointResponse `json:"compare_total,omitempty"`
	CompareSingleTotal   *float64            `json:"compare_single_total,omitempty"`

	Unit string `json:"unit"`
}

// ColumnValuesSubmitRequest is the column-values-submit endpoint's body.
type ColumnValuesSubmitRequest struct {
	ColumnID     string              `json:"column_id" binding:"required"`
	DateInterval DateIntervalRequest `json:"date_interval" binding:"required"`
}

// EventErrorsSubmitRequest is the event-errors-submit endpoint's body.
type EventErrorsSubmitRequest struct {
	EventName    string              `json:"event_name"`
	DateInterval DateIntervalRequest `json:"date_interval" binding:"required"`
}

// DatasourceResponse is one entry of the datasources/event-datasources
// listing endpoints.
type DatasourceResponse struct {
	ID               string     `json:"id"`
	WarehouseKind    string     `json:"warehouse_kind"`
	HasDataFrom      *time.Time `json:"has_data_from,omitempty"`
	HasDataUpTo      *time.Time `json:"has_data_up_to,omitempty"`
}

// FreshnessResponse is one entry of the datasources-freshness endpoint.
type FreshnessResponse struct {
	ID          string     `json:"id"`
	HasDataUpTo *time.Time `json:"has_data_up_to,omitempty"`
}
