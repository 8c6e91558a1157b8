package catalog

import "time"

// FilterOperator enumerates the operators BooleanExpressionFromFilter
// (internal/sqlast) knows how to render.
type FilterOperator string

const (
	OpLT         FilterOperator = "<"
	OpLTE        FilterOperator = "<="
	OpGT         FilterOperator = ">"
	OpGTE        FilterOperator = ">="
	OpEQ         FilterOperator = "="
	OpNEQ        FilterOperator = "!="
	OpLike       FilterOperator = "like"
	OpNotLike    FilterOperator = "not_like"
	OpIn         FilterOperator = "in"
	OpNotIn      FilterOperator = "not_in"
	OpIsNull     FilterOperator = "is_null"
	OpIsNotNull  FilterOperator = "is_not_null"
	OpBooleanIs    FilterOperator = "boolean_is"
	OpBooleanIsNot FilterOperator = "boolean_is_not"
	OpBetween    FilterOperator = "between"
)

// ColumnRef names a column on a specific datasource — cross-datasource
// filters/group-bys carry a datasource id different from the query's primary.
type ColumnRef struct {
	DatasourceID string
	ColumnID     string
}

// Filter is one WHERE condition against a column, local or cross-datasource.
type Filter struct {
	Column   ColumnRef
	Operator FilterOperator
	Values   []string
	DataType DataType
}

// GroupBy is one GROUP BY column reference, local or cross-datasource.
type GroupBy struct {
	Column ColumnRef
}

// ChartQuery is the resolved request: everything the SQL compiler and the
// chart pipeline need to produce and stitch together warehouse fragments.
type ChartQuery struct {
	AppID     string
	PageID    string
	RequestID string

	Datasource Datasource
	Kpi        Kpi
	TimeGrain  TimeGrain // defaults to GrainDay when zero value

	RequestedInterval DatetimeInterval
	ClampedInterval    DatetimeInterval

	HasCompare        bool
	CompareRequested   DatetimeInterval
	CompareClamped     DatetimeInterval

	XAxisColumn ColumnRef

	Filters  []Filter
	GroupBys []GroupBy

	HasSortBy     bool
	SortByDatasource Datasource
	SortByKpi     Kpi

	GroupByLimit int
}

// EffectiveSortBy returns the sort-by KPI only when its datasource matches
// the primary datasource — otherwise the sort-by fetch is ignored per the
// ChartQuery invariant in spec.md §3.
func (q ChartQuery) EffectiveSortBy() (Kpi, bool) {
	if !q.HasSortBy {
		return Kpi{}, false
	}
	if q.SortByDatasource.ID != q.Datasource.ID {
		return Kpi{}, false
	}
	return q.SortByKpi, true
}

// CompareAlignOffset returns the number of days the compare period's x-axis
// must be shifted forward to overlay the primary period, accounting for
// both periods' right-clamping against datasource availability. Returns
// false if this query has no compare interval.
func (q ChartQuery) CompareAlignOffset() (int, bool) {
	if !q.HasCompare {
		return 0, false
	}
	offset := daysBetween(q.CompareClamped.DateTo, q.ClampedInterval.DateTo)
	dateClampedRight := daysBetween(q.ClampedInterval.DateTo, q.RequestedInterval.DateTo)
	compareDateClampedRight := daysBetween(q.CompareClamped.DateTo, q.CompareRequested.DateTo)
	return offset + dateClampedRight - compareDateClampedRight, true
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// ToWarehouseQuery projects this ChartQuery down to the primitive form the
// SQL compiler consumes, against the clamped primary interval.
func (q ChartQuery) ToWarehouseQuery() WarehouseChartQuery {
	return WarehouseChartQuery{
		AppID:          q.AppID,
		PageID:         q.PageID,
		RequestID:      q.RequestID,
		Datasource:     q.Datasource,
		Metrics:        q.Kpi.Symbols,
		DateIntervals:  []DatetimeInterval{q.ClampedInterval},
		TimeGrain:      q.TimeGrain,
		ColumnFilters:  append([]Filter(nil), q.Filters...),
		ColumnGroupBys: append([]GroupBy(nil), q.GroupBys...),
		XAxisColumn:    q.XAxisColumn,
	}
}

// ToCompareWarehouseQuery returns the warehouse query for the compare
// period, false if this query has no compare interval.
func (q ChartQuery) ToCompareWarehouseQuery() (WarehouseChartQuery, bool) {
	if !q.HasCompare {
		return WarehouseChartQuery{}, false
	}
	wq := q.ToWarehouseQuery()
	wq.DateIntervals = []DatetimeInterval{q.CompareClamped}
	return wq, true
}

// ToSortByWarehouseQuery returns the warehouse query that fetches the
// sort-by KPI's metrics, false if there is no effective sort-by KPI
// (see EffectiveSortBy).
func (q ChartQuery) ToSortByWarehouseQuery() (WarehouseChartQuery, bool) {
	kpi, ok := q.EffectiveSortBy()
	if !ok {
		return WarehouseChartQuery{}, false
	}
	wq := q.ToWarehouseQuery()
	wq.Metrics = kpi.Symbols
	return wq, true
}

// WarehouseChartQuery is the primitive request form passed to the SQL
// compiler.
type WarehouseChartQuery struct {
	AppID     string
	PageID    string
	RequestID string

	Datasource Datasource
	Metrics    map[string]WarehouseMetric // symbol -> metric

	DateIntervals []DatetimeInterval
	TimeGrain     TimeGrain

	ColumnFilters  []Filter
	ColumnGroupBys []GroupBy

	XAxisColumn ColumnRef
}
