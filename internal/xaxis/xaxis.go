// Package xaxis implements the per-x-axis-column policies (spec §4.6): how
// to fetch warehouse fragments, what identity backbone to gap-fill against,
// how to align a compare period, and how totals collapse. The reference
// implementation picks a concrete variant by the x-axis column id; Go
// models that as a small Strategy interface with two implementations
// instead of runtime class dispatch.
package xaxis

import (
	"context"
	"fmt"

	"neobase-ai/internal/apperrors"
	"neobase-ai/internal/catalog"
	"neobase-ai/internal/tabular"
)

// Warehouse submits a compiled chart query and blocks until every metric's
// fragment has been fetched (or the context is cancelled).
// internal/queryservice.Service is the production implementation: one task
// per metric on the concurrent executor, gathered into a single
// TabularDataResults.
type Warehouse interface {
	SubmitQuery(ctx context.Context, query catalog.WarehouseChartQuery) (*tabular.TabularDataResults, error)
}

// ComparedResults bundles the primary fetch plus the optional sort-by and
// compare-period fetches a chart request may also need.
type ComparedResults struct {
	Results        *tabular.TabularDataResults
	CompareResults *tabular.TabularDataResults // nil if the query has no compare interval
	SortByResults  *tabular.TabularDataResults // nil if there is no effective sort-by KPI
}

// Strategy is the fixed surface every x-axis variant implements.
type Strategy interface {
	GetWarehouseComparedResults(ctx context.Context, query catalog.ChartQuery, wh Warehouse) (ComparedResults, error)
	GetIdentityResult(interval catalog.DatetimeInterval, grain catalog.TimeGrain, groupByColumns []string, groupByValues [][]any) tabular.RollupDataResult
	GetCompareIdentityDateInterval(query catalog.ChartQuery) catalog.DatetimeInterval
	GetSemanticLayerResult(query catalog.ChartQuery, kpi catalog.Kpi, identity tabular.RollupDataResult, rollups *tabular.RollupDataResults) (*tabular.TabularDataResult, error)
	GetTotal(query catalog.ChartQuery, identity tabular.RollupDataResult, rollups *tabular.RollupDataResults) (*tabular.TabularDataResult, error)
	GetSingleTotal(query catalog.ChartQuery, identity tabular.RollupDataResult, rollups *tabular.RollupDataResults) (*tabular.TabularDataResult, error)
}

// For resolves the strategy named by an x-axis column id.
func For(xAxisColumnID string) (Strategy, error) {
	switch xAxisColumnID {
	case catalog.DatePartitionColumn:
		return DateStrategy{}, nil
	case catalog.CohortDayColumn:
		return CohortDayStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedXAxis, xAxisColumnID)
	}
}

// zeroGroupBy returns a same-length slice of zeros, used to collapse every
// group-by cell for a single overall total.
func zeroGroupBy(g []any) []any {
	out := make([]any, len(g))
	for i := range out {
		out[i] = 0
	}
	return out
}
