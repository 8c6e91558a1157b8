package xaxis

import (
	"context"

	"neobase-ai/internal/catalog"
	"neobase-ai/internal/formula"
	"neobase-ai/internal/tabular"
)

// CohortDayStrategy is the x-axis variant for cohort analyses: the x-axis
// is an integer day offset from each user's registration date.
type CohortDayStrategy struct{}

const dateLayout = "2006-01-02"

// preprocess scopes the query to users who registered within the requested
// interval and stretches date_to so cohorts have room to "age" by the
// requested number of days.
func preprocess(wq catalog.WarehouseChartQuery) catalog.WarehouseChartQuery {
	iv := wq.DateIntervals[0]
	wq.ColumnFilters = append(append([]catalog.Filter(nil), wq.ColumnFilters...), catalog.Filter{
		Column:   catalog.ColumnRef{ColumnID: catalog.RegistrationDateColumn},
		Operator: catalog.OpBetween,
		Values:   []string{iv.DateFrom.Format(dateLayout), iv.DateTo.Format(dateLayout)},
		DataType: catalog.DataTypeDate,
	})
	wq.DateIntervals = []catalog.DatetimeInterval{iv.AddDays(iv.Days())}
	return wq
}

func (CohortDayStrategy) GetWarehouseComparedResults(ctx context.Context, query catalog.ChartQuery, wh Warehouse) (ComparedResults, error) {
	results, err := wh.SubmitQuery(ctx, preprocess(query.ToWarehouseQuery()))
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
	compareResults, err := wh.SubmitQuery(ctx, preprocess(compareQuery))
	if err != nil {
		return ComparedResults{}, err
	}
	return ComparedResults{Results: results, CompareResults: compareResults, SortByResults: sortByResults}, nil
}

func (CohortDayStrategy) GetIdentityResult(interval catalog.DatetimeInterval, grain catalog.TimeGrain, groupByColumns []string, groupByValues [][]any) tabular.RollupDataResult {
	return tabular.RollupDataResult{
		Result:      tabular.FromCohortDays(interval.Days()/2, groupByColumns, groupByValues),
		RollupXAxis: catalog.ReducerSum,
		RollupYAxis: catalog.ReducerSum,
	}
}

func (CohortDayStrategy) GetCompareIdentityDateInterval(query catalog.ChartQuery) catalog.DatetimeInterval {
	return query.CompareClamped
}

func (CohortDayStrategy) GetSemanticLayerResult(query catalog.ChartQuery, kpi catalog.Kpi, identity tabular.RollupDataResult, rollups *tabular.RollupDataResults) (*tabular.TabularDataResult, error) {
	result, err := formula.Evaluate(kpi.Formula, identity.Rollup(nil, nil), rollups.Rollup(nil, nil))
	if err != nil {
		return nil, err
	}
	return result.MapXAxis(func(x any) any {
		switch v := x.(type) {
		case int:
			return v
		case float64:
			return int(v)
		default:
			return x
		}
	}), nil
}

func (CohortDayStrategy) GetTotal(query catalog.ChartQuery, identity tabular.RollupDataResult, rollups *tabular.RollupDataResults) (*tabular.TabularDataResult, error) {
	return nil, nil
}

func (CohortDayStrategy) GetSingleTotal(query catalog.ChartQuery, identity tabular.RollupDataResult, rollups *tabular.RollupDataResults) (*tabular.TabularDataResult, error) {
	return nil, nil
}
