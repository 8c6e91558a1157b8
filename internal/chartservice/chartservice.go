// Package chartservice is the charts-submit endpoint's backing service: it
// resolves a request's "datasource_id.kpi_id"/"datasource_id.column_id"
// full-id references against the catalog (internal/catalog.ParseFullID /
// ResolveKpi), assembles a catalog.ChartQuery, fetches warehouse fragments
// through internal/xaxis, and runs internal/chartpipeline's semantic layer
// over them — the one place all eight core components meet.
package chartservice

import (
	"context"
	"fmt"

	"neobase-ai/internal/apperrors"
	"neobase-ai/internal/catalog"
	"neobase-ai/internal/chartpipeline"
	"neobase-ai/internal/xaxis"
)

type Service struct {
	catalog   *catalog.Cache
	warehouse xaxis.Warehouse
}

func New(cat *catalog.Cache, wh xaxis.Warehouse) *Service {
	return &Service{catalog: cat, warehouse: wh}
}

// Request is the charts-submit endpoint's parsed body (spec.md §6): a KPI,
// an x-axis column, a date interval, and the optional compare/sort-by/
// group-by extensions, all column and KPI references given as full ids.
type Request struct {
	AppID     string
	PageID    string
	RequestID string

	KpiID           string
	XAxisColumnID   string
	TimeGrain       catalog.TimeGrain
	DateInterval    catalog.DatetimeInterval
	HasCompare      bool
	CompareInterval catalog.DatetimeInterval
	Filters         []FilterRequest
	GroupBys        []string
	SortByKpiID     string
	GroupByLimit    int
}

type FilterRequest struct {
	ColumnID string
	Operator catalog.FilterOperator
	Values   []string
	DataType catalog.DataType
}

// Submit resolves req against the catalog, fetches every warehouse fragment
// it needs, and runs the semantic layer over them.
func (s *Service) Submit(ctx context.Context, req Request) (*chartpipeline.Result, error) {
	query, err := s.buildQuery(req)
	if err != nil {
		return nil, err
	}

	enrich := func(err error) error {
		return apperrors.WithAttrs(err, map[string]any{
			"request_id": query.RequestID, "app_id": query.AppID,
			"datasource_id": query.Datasource.ID, "days_requested": query.RequestedInterval.Days(),
		})
	}

	strategy, err := xaxis.For(query.XAxisColumn.ColumnID)
	if err != nil {
		return nil, enrich(err)
	}
	compared, err := strategy.GetWarehouseComparedResults(ctx, query, s.warehouse)
	if err != nil {
		return nil, enrich(err)
	}

	result, err := chartpipeline.Apply(query, compared)
	if err != nil {
		return nil, enrich(err)
	}
	return result, nil
}

func (s *Service) buildQuery(req Request) (catalog.ChartQuery, error) {
	kpiDatasource, kpi, err := s.resolveKpi(req.AppID, req.KpiID)
	if err != nil {
		return catalog.ChartQuery{}, err
	}

	xAxisRef, err := s.resolveColumnRef(req.AppID, req.XAxisColumnID)
	if err != nil {
		return catalog.ChartQuery{}, err
	}

	filters, err := s.resolveFilters(req.AppID, req.Filters)
	if err != nil {
		return catalog.ChartQuery{}, err
	}
	groupBys, err := s.resolveGroupBys(req.AppID, req.GroupBys)
	if err != nil {
		return catalog.ChartQuery{}, err
	}

	timeGrain := req.TimeGrain
	if timeGrain == "" {
		timeGrain = catalog.GrainDay
	}

	query := catalog.ChartQuery{
		AppID:     req.AppID,
		PageID:    req.PageID,
		RequestID: req.RequestID,

		Datasource: kpiDatasource,
		Kpi:        kpi,
		TimeGrain:  timeGrain,

		RequestedInterval: req.DateInterval,
		XAxisColumn:       xAxisRef,

		Filters:  filters,
		GroupBys: groupBys,

		GroupByLimit: req.GroupByLimit,
	}

	if clamped, ok := kpiDatasource.ClampDateInterval(req.DateInterval); ok {
		query.ClampedInterval = clamped
	} else {
		query.ClampedInterval = req.DateInterval
	}

	if req.HasCompare {
		query.HasCompare = true
		query.CompareRequested = req.CompareInterval
		if clamped, ok := kpiDatasource.ClampDateInterval(req.CompareInterval); ok {
			query.CompareClamped = clamped
		} else {
			query.CompareClamped = req.CompareInterval
		}
	}

	if req.SortByKpiID != "" {
		sortByDatasource, sortByKpi, err := s.resolveKpi(req.AppID, req.SortByKpiID)
		if err != nil {
			return catalog.ChartQuery{}, err
		}
		query.HasSortBy = true
		query.SortByDatasource = sortByDatasource
		query.SortByKpi = sortByKpi
	}

	return query, nil
}

func (s *Service) resolveKpi(appID, fullKpiID string) (catalog.Datasource, catalog.Kpi, error) {
	full, err := catalog.ParseFullID(fullKpiID)
	if err != nil {
		return catalog.Datasource{}, catalog.Kpi{}, err
	}
	ds, ok := s.catalog.Datasource(appID, full.DatasourceID)
	if !ok {
		return catalog.Datasource{}, catalog.Kpi{}, fmt.Errorf("chartservice: unknown datasource %q", full.DatasourceID)
	}
	kpi, ok := catalog.ResolveKpi(ds, full.ID)
	if !ok {
		return catalog.Datasource{}, catalog.Kpi{}, fmt.Errorf("chartservice: unknown kpi %q on datasource %q", full.ID, full.DatasourceID)
	}
	return ds, kpi, nil
}

func (s *Service) resolveColumnRef(appID, fullColumnID string) (catalog.ColumnRef, error) {
	full, err := catalog.ParseFullID(fullColumnID)
	if err != nil {
		return catalog.ColumnRef{}, err
	}
	if _, ok := s.catalog.Datasource(appID, full.DatasourceID); !ok {
		return catalog.ColumnRef{}, fmt.Errorf("chartservice: unknown datasource %q", full.DatasourceID)
	}
	return catalog.ColumnRef{DatasourceID: full.DatasourceID, ColumnID: full.ID}, nil
}

func (s *Service) resolveFilters(appID string, reqs []FilterRequest) ([]catalog.Filter, error) {
	filters := make([]catalog.Filter, 0, len(reqs))
	for _, f := range reqs {
		ref, err := s.resolveColumnRef(appID, f.ColumnID)
		if err != nil {
			return nil, err
		}
		filters = append(filters, catalog.Filter{
			Column:   ref,
			Operator: f.Operator,
			Values:   f.Values,
			DataType: f.DataType,
		})
	}
	return filters, nil
}

func (s *Service) resolveGroupBys(appID string, ids []string) ([]catalog.GroupBy, error) {
	groupBys := make([]catalog.GroupBy, 0, len(ids))
	for _, id := range ids {
		ref, err := s.resolveColumnRef(appID, id)
		if err != nil {
			return nil, err
		}
		groupBys = append(groupBys, catalog.GroupBy{Column: ref})
	}
	return groupBys, nil
}
