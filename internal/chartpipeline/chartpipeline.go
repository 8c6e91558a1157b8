// Package chartpipeline implements the semantic layer's orchestration
// (spec §4.7): overload protection, the group-by limit policy (sort-by-KPI
// top-N with a final recompute), zero trimming, empty-fragment substitution
// with the identity backbone, and the compare-period overlay.
package chartpipeline

import (
	"neobase-ai/internal/apperrors"
	"neobase-ai/internal/catalog"
	"neobase-ai/internal/tabular"
	"neobase-ai/internal/xaxis"
)

// Result is the fully computed chart response: primary and, if requested,
// compare-period data, each with an overall total and a single scalar
// total. Compare fields are nil when the query has no compare interval, the
// compare fragment filtered down to nothing, or the primary result itself
// was the special empty case below.
type Result struct {
	Data        *tabular.TabularDataResult
	Total       *tabular.TabularDataResult
	SingleTotal *tabular.TabularDataResult

	CompareData        *tabular.TabularDataResult
	CompareTotal        *tabular.TabularDataResult
	CompareSingleTotal   *tabular.TabularDataResult

	Unit string
}

// Apply is the semantic layer's entry point. It runs the overload
// protection check, handles the "group-by columns requested but zero
// distinct values returned" special case, then builds the primary and
// compare-period results.
func Apply(query catalog.ChartQuery, compared xaxis.ComparedResults) (*Result, error) {
	distinct := compared.Results.GroupByColumnsDistinctValuesCount()
	maxRows := compared.Results.GetMaxRows()
	if distinct > catalog.BigQueryMaxDistinctGroupByValues && maxRows > catalog.BigQueryMaxRows/2 {
		return nil, apperrors.WithAttrs(
			apperrors.Wrap(apperrors.ErrTooManyGroupByValues, "distinct_group_by_values=%d rows=%d", distinct, maxRows),
			map[string]any{"distinct_group_by_values": distinct, "rows_count": maxRows},
		)
	}

	if len(compared.Results.GroupByColumns()) > 0 && len(compared.Results.GroupByValues()) == 0 {
		// Group-by columns were requested but the warehouse returned no
		// tuples at all: there is nothing to generate an identity backbone
		// against, so skip straight to an empty result.
		return &Result{Unit: query.Kpi.Unit}, nil
	}

	strategy, err := xaxis.For(query.XAxisColumn.ColumnID)
	if err != nil {
		return nil, err
	}

	data, total, singleTotal, err := buildFromResult(strategy, query, compared.Results, compared.SortByResults)
	if err != nil {
		return nil, err
	}

	compareData, compareTotal, compareSingleTotal, err := buildFromCompareResult(strategy, query, compared.CompareResults, data)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:        data,
		Total:       total,
		SingleTotal: singleTotal,

		CompareData:        compareData,
		CompareTotal:        compareTotal,
		CompareSingleTotal:   compareSingleTotal,

		Unit: query.Kpi.Unit,
	}, nil
}

func buildFromResult(strategy xaxis.Strategy, query catalog.ChartQuery, results, sortByResults *tabular.TabularDataResults) (
	result *tabular.TabularDataResult, total *tabular.TabularDataResult, singleTotal *tabular.TabularDataResult, err error) {

	result, rollups, identity, err := limitGroupByValues(strategy, query, results, sortByResults)
	if err != nil {
		return nil, nil, nil, err
	}

	result = result.TrimZeros()
	rollups = rollups.TrimZeros()
	identity = identity.FilterByGroupByValues(result.GroupByValues())

	if total, err = strategy.GetTotal(query, identity, rollups); err != nil {
		return nil, nil, nil, err
	}
	if singleTotal, err = strategy.GetSingleTotal(query, identity, rollups); err != nil {
		return nil, nil, nil, err
	}
	return result, total, singleTotal, nil
}

func buildFromCompareResult(strategy xaxis.Strategy, query catalog.ChartQuery, compareResults *tabular.TabularDataResults, result *tabular.TabularDataResult) (
	compareResult *tabular.TabularDataResult, total *tabular.TabularDataResult, singleTotal *tabular.TabularDataResult, err error) {

	if compareResults == nil {
		return nil, nil, nil, nil
	}
	compareResults = compareResults.FilterByGroupByValues(result.GroupByValues())
	if len(compareResults.GroupByColumns()) > 0 && len(compareResults.GroupByValues()) == 0 {
		// the group-by filter against the primary result's tuples emptied
		// every compare fragment
		return nil, nil, nil, nil
	}

	compareInterval := strategy.GetCompareIdentityDateInterval(query)
	identity := strategy.GetIdentityResult(compareInterval, query.TimeGrain, compareResults.GroupByColumns(), compareResults.GroupByValues())
	rollups := getRollupResults(query.Kpi, identity, compareResults)

	compareResult, err = strategy.GetSemanticLayerResult(query, query.Kpi, identity, rollups)
	if err != nil {
		return nil, nil, nil, err
	}

	compareResult = compareResult.TrimZeros()
	rollups = rollups.TrimZeros()
	identity = identity.FilterByGroupByValues(compareResult.GroupByValues())

	if total, err = strategy.GetTotal(query, identity, rollups); err != nil {
		return nil, nil, nil, err
	}
	if singleTotal, err = strategy.GetSingleTotal(query, identity, rollups); err != nil {
		return nil, nil, nil, err
	}
	return compareResult, total, singleTotal, nil
}

// limitGroupByValues implements the group-by top-N policy: without a limit
// it rolls the primary fragments straight up. With a limit, it first rolls
// up whichever of the sort-by or primary fragments should drive ranking,
// collapses that to an overall total per group-by tuple, keeps the top N
// tuples, then recomputes the primary result from scratch and filters it
// down to just those tuples — the earlier ranking pass never leaks into the
// kept rows' own values.
func limitGroupByValues(strategy xaxis.Strategy, query catalog.ChartQuery, queryResults, sortByResults *tabular.TabularDataResults) (
	*tabular.TabularDataResult, *tabular.RollupDataResults, tabular.RollupDataResult, error) {

	if query.GroupByLimit == 0 {
		identity := strategy.GetIdentityResult(query.ClampedInterval, query.TimeGrain, queryResults.GroupByColumns(), queryResults.GroupByValues())
		rollups := getRollupResults(query.Kpi, identity, queryResults)
		result, err := strategy.GetSemanticLayerResult(query, query.Kpi, identity, rollups)
		if err != nil {
			return nil, nil, tabular.RollupDataResult{}, err
		}
		return result, rollups, identity, nil
	}

	rankResults, rankKpi := queryResults, query.Kpi
	if sortByResults != nil {
		if kpi, ok := query.EffectiveSortBy(); ok {
			rankResults, rankKpi = sortByResults, kpi
		}
	}

	rankIdentity := strategy.GetIdentityResult(query.ClampedInterval, query.TimeGrain, rankResults.GroupByColumns(), rankResults.GroupByValues())
	rankRollups := getRollupResults(rankKpi, rankIdentity, rankResults)
	rankResult, err := strategy.GetSemanticLayerResult(query, rankKpi, rankIdentity, rankRollups)
	if err != nil {
		return nil, nil, tabular.RollupDataResult{}, err
	}

	totals := overallTotal(rankResult).GetTopNValues(query.GroupByLimit)
	groupByValues := totals.GroupByValues()

	finalIdentity := strategy.GetIdentityResult(query.ClampedInterval, query.TimeGrain, queryResults.GroupByColumns(), queryResults.GroupByValues())
	finalRollups := getRollupResults(query.Kpi, finalIdentity, queryResults)
	finalResult, err := strategy.GetSemanticLayerResult(query, query.Kpi, finalIdentity, finalRollups)
	if err != nil {
		return nil, nil, tabular.RollupDataResult{}, err
	}

	finalResult = finalResult.FilterByGroupByValues(groupByValues)
	finalRollups = finalRollups.FilterByGroupByValues(groupByValues)
	finalIdentity = finalIdentity.FilterByGroupByValues(groupByValues)

	return finalResult, finalRollups, finalIdentity, nil
}

// overallTotal collapses every x-axis point to zero, leaving one row per
// group-by tuple — the "which tuples rank highest overall" view the limit
// policy ranks on.
func overallTotal(result *tabular.TabularDataResult) *tabular.TabularDataResult {
	rr := tabular.RollupDataResult{Result: result, RollupXAxis: catalog.ReducerSum, RollupYAxis: catalog.ReducerSum}
	return rr.Rollup(func(any) any { return 0 }, nil)
}

// getRollupResults pairs every fragment with the KPI's rollup reducers,
// substituting the identity backbone for any fragment that came back
// completely empty (an empty fragment cannot itself drive a GroupByXAxis
// pass, so there is nothing to roll up).
func getRollupResults(kpi catalog.Kpi, identity tabular.RollupDataResult, results *tabular.TabularDataResults) *tabular.RollupDataResults {
	out := tabular.NewRollupDataResults()
	for _, sym := range results.Symbols() {
		fragment, _ := results.Get(sym)
		if fragment.IsEmpty() {
			fragment = identity.Result
		}
		out.Add(sym, tabular.RollupDataResult{
			Result:      fragment,
			RollupXAxis: kpi.Rollup.RollupXAxis,
			RollupYAxis: kpi.Rollup.RollupYAxis,
		})
	}
	return out
}
