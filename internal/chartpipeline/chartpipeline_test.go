package chartpipeline

import (
	"errors"
	"testing"
	"time"

	"neobase-ai/internal/apperrors"
	"neobase-ai/internal/catalog"
	"neobase-ai/internal/tabular"
	"neobase-ai/internal/xaxis"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func simpleQuery() catalog.ChartQuery {
	return catalog.ChartQuery{
		Datasource: catalog.Datasource{ID: "sessions", Schema: "analytics", TableName: "sessions"},
		Kpi: catalog.Kpi{
			Formula: "x",
			Symbols: map[string]catalog.WarehouseMetric{"x": {SelectExpression: "COUNT(*)"}},
			Rollup:  catalog.Rollup{RollupXAxis: catalog.ReducerSum, RollupYAxis: catalog.ReducerSum},
		},
		ClampedInterval:   catalog.NewDatetimeInterval(day("2022-01-01"), day("2022-01-03")),
		RequestedInterval: catalog.NewDatetimeInterval(day("2022-01-01"), day("2022-01-03")),
		XAxisColumn:       catalog.ColumnRef{ColumnID: catalog.DatePartitionColumn},
	}
}

func TestApplyBasicFlowTrimsZerosAndComputesTotal(t *testing.T) {
	query := simpleQuery()
	results := tabular.NewResults()
	results.Set("x", tabular.New(nil, []tabular.Row{{XAxis: day("2022-01-02"), Value: 5}}))

	res, err := Apply(query, xaxis.ComparedResults{Results: results})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Data.Rows) != 1 || res.Data.Rows[0].Value != 5 {
		t.Fatalf("expected zero-trimmed single row of 5, got %+v", res.Data.Rows)
	}
	if len(res.Total.Rows) != 1 || res.Total.Rows[0].Value != 5 {
		t.Fatalf("expected overall total of 5, got %+v", res.Total.Rows)
	}
}

func TestApplyOverloadProtectionTripsOnTooManyGroupByValues(t *testing.T) {
	query := simpleQuery()
	query.Kpi.Symbols = map[string]catalog.WarehouseMetric{"x": {SelectExpression: "COUNT(*)"}}

	groupBy := []string{"country"}
	var rows []tabular.Row
	for i := 0; i < catalog.BigQueryMaxDistinctGroupByValues+1; i++ {
		for d := 0; d < catalog.BigQueryMaxRows/2/catalog.BigQueryMaxDistinctGroupByValues+1; d++ {
			rows = append(rows, tabular.Row{XAxis: day("2022-01-01").AddDate(0, 0, d), GroupBy: []any{i}, Value: 1})
		}
	}
	results := tabular.NewResults()
	results.Set("x", tabular.New(groupBy, rows))

	_, err := Apply(query, xaxis.ComparedResults{Results: results})
	if !errors.Is(err, apperrors.ErrTooManyGroupByValues) {
		t.Fatalf("expected ErrTooManyGroupByValues, got %v", err)
	}
}

func TestApplyGroupByRequestedButZeroValuesReturnsEmptyResult(t *testing.T) {
	query := simpleQuery()
	results := tabular.NewResults()
	results.Set("x", tabular.Empty([]string{"country"}))

	res, err := Apply(query, xaxis.ComparedResults{Results: results})
	if err != nil {
		t.Fatal(err)
	}
	if res.Data != nil || res.Total != nil {
		t.Fatalf("expected a fully empty result, got %+v", res)
	}
}

func TestApplyGroupByLimitKeepsTopNTuplesAcrossFullRecompute(t *testing.T) {
	query := simpleQuery()
	query.GroupByLimit = 1

	groupBy := []string{"country"}
	results := tabular.NewResults()
	results.Set("x", tabular.New(groupBy, []tabular.Row{
		{XAxis: day("2022-01-01"), GroupBy: []any{"US"}, Value: 10},
		{XAxis: day("2022-01-01"), GroupBy: []any{"FR"}, Value: 1},
	}))

	res, err := Apply(query, xaxis.ComparedResults{Results: results})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range res.Data.Rows {
		if r.GroupBy[0] != "US" {
			t.Fatalf("expected only the top-ranked tuple US to survive, found %v", r.GroupBy)
		}
	}
}

func TestApplyCompareOverlayFiltersToPrimaryGroupByTuples(t *testing.T) {
	query := simpleQuery()
	query.HasCompare = true
	query.CompareRequested = catalog.NewDatetimeInterval(day("2021-12-29"), day("2021-12-31"))
	query.CompareClamped = query.CompareRequested

	groupBy := []string{"country"}
	results := tabular.NewResults()
	results.Set("x", tabular.New(groupBy, []tabular.Row{
		{XAxis: day("2022-01-02"), GroupBy: []any{"US"}, Value: 5},
	}))
	compareResults := tabular.NewResults()
	compareResults.Set("x", tabular.New(groupBy, []tabular.Row{
		{XAxis: day("2021-12-30"), GroupBy: []any{"US"}, Value: 3},
		{XAxis: day("2021-12-30"), GroupBy: []any{"FR"}, Value: 7},
	}))

	res, err := Apply(query, xaxis.ComparedResults{Results: results, CompareResults: compareResults})
	if err != nil {
		t.Fatal(err)
	}
	if res.CompareData == nil {
		t.Fatal("expected compare data to be populated")
	}
	for _, r := range res.CompareData.Rows {
		if r.GroupBy[0] != "US" {
			t.Fatalf("expected the FR tuple (absent from the primary result) to be filtered out, found %v", r.GroupBy)
		}
	}
}

func TestApplyNoCompareResultsLeavesCompareFieldsNil(t *testing.T) {
	query := simpleQuery()
	results := tabular.NewResults()
	results.Set("x", tabular.New(nil, []tabular.Row{{XAxis: day("2022-01-02"), Value: 5}}))

	res, err := Apply(query, xaxis.ComparedResults{Results: results})
	if err != nil {
		t.Fatal(err)
	}
	if res.CompareData != nil || res.CompareTotal != nil || res.CompareSingleTotal != nil {
		t.Fatal("expected nil compare fields when the query has no compare interval")
	}
}
