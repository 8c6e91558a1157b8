package xaxis

import (
	"context"
	"time"

	"neobase-ai/internal/catalog"
	"neobase-ai/internal/formula"
	"neobase-ai/internal/tabular"
)

// DateStrategy is the x-axis variant for the date-partition column: the
// x-axis is a run of grain-truncated calendar points.
type DateStrategy struct{}

func (DateStrategy) GetWarehouseComparedResults(ctx context.Context, query catalog.ChartQuery, wh Warehouse) (ComparedResults, error) {
	results, err := wh.SubmitQuery(ctx, query.ToWarehouseQuery())
	if err != nil {
		return ComparedResults{}, err
	}

	var sortByResults *tabular.TabularDataResults
	if sortByQuery, ok := query.ToSortByWarehouseQuery(); ok {
		sortByResults, err = wh.SubmitQuery(ctx, sortByQuery)
		if err != nil {
			return ComparedResults{}, err
		}
	}

	compareQuery, ok := query.ToCompareWarehouseQuery()
	if !ok {
		return ComparedResults{Results: results, SortByResults: sortByResults}, nil
	}

	compareResults, err := wh.SubmitQuery(ctx, compareQuery)
	if err != nil {
		return ComparedResults{}, err
	}
	offset, _ := query.CompareAlignOffset()
	compareResults = compareResults.
		MapXAxis(func(x any) any { return x.(time.Time).AddDate(0, 0, offset) }).
		Filter(func(x any) bool { return query.RequestedInterval.ContainsDate(x.(time.Time)) })

	return ComparedResults{Results: results, CompareResults: compareResults, SortByResults: sortByResults}, nil
}

func (DateStrategy) GetIdentityResult(interval catalog.DatetimeInterval, grain catalog.TimeGrain, groupByColumns []string, groupByValues [][]any) tabular.RollupDataResult {
	if grain == "" {
		grain = catalog.GrainDay
	}
	return tabular.RollupDataResult{
		Result:      tabular.FromDateInterval(interval, grain, groupByColumns, groupByValues),
		RollupXAxis: catalog.ReducerSum,
		RollupYAxis: catalog.ReducerSum,
	}
}

func (DateStrategy) GetCompareIdentityDateInterval(query catalog.ChartQuery) catalog.DatetimeInterval {
	offset, _ := query.CompareAlignOffset()
	shiftedFrom := query.CompareClamped.DateFrom.AddDate(0, 0, offset)
	from := query.ClampedInterval.DateFrom
	if shiftedFrom.After(from) {
		from = shiftedFrom
	}
	to := query.CompareClamped.DateTo.AddDate(0, 0, offset)
	return catalog.NewDatetimeInterval(from, to)
}

func (DateStrategy) GetSemanticLayerResult(query catalog.ChartQuery, kpi catalog.Kpi, identity tabular.RollupDataResult, rollups *tabular.RollupDataResults) (*tabular.TabularDataResult, error) {
	grain := query.TimeGrain
	if grain == "" {
		grain = catalog.GrainDay
	}
	mapX := func(x any) any { return grain.TruncateDatetime(x.(time.Time)) }

	result, err := formula.Evaluate(kpi.Formula, identity.Rollup(mapX, nil), rollups.Rollup(mapX, nil))
	if err != nil {
		return nil, err
	}
	if query.Datasource.TimeGrain.AtLeastDay() {
		result = result.MapXAxis(func(x any) any {
			t := x.(time.Time)
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		})
	}
	return result, nil
}

func (DateStrategy) GetTotal(query catalog.ChartQuery, identity tabular.RollupDataResult, rollups *tabular.RollupDataResults) (*tabular.TabularDataResult, error) {
	zeroX := func(any) any { return 0 }
	return formula.Evaluate(query.Kpi.Formula, identity.Rollup(zeroX, nil), rollups.Rollup(zeroX, nil))
}

func (DateStrategy) GetSingleTotal(query catalog.ChartQuery, identity tabular.RollupDataResult, rollups *tabular.RollupDataResults) (*tabular.TabularDataResult, error) {
	zeroX := func(any) any { return 0 }
	return formula.Evaluate(query.Kpi.Formula, identity.Rollup(zeroX, zeroGroupBy), rollups.Rollup(zeroX, zeroGroupBy))
}
