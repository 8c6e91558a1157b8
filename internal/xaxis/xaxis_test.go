package xaxis

import (
	"context"
	"testing"
	"time"

	"neobase-ai/internal/catalog"
	"neobase-ai/internal/tabular"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

type fakeWarehouse struct {
	submissions []catalog.WarehouseChartQuery
	result      *tabular.TabularDataResult
}

func (f *fakeWarehouse) SubmitQuery(_ context.Context, q catalog.WarehouseChartQuery) (*tabular.TabularDataResults, error) {
	f.submissions = append(f.submissions, q)
	out := tabular.NewResults()
	for sym := range q.Metrics {
		out.Set(sym, f.result)
	}
	return out, nil
}

func simpleQuery() catalog.ChartQuery {
	ds := catalog.Datasource{ID: "sessions", Schema: "analytics", TableName: "sessions", Cardinality: catalog.CardinalityMany, TimeGrain: catalog.GrainDay}
	return catalog.ChartQuery{
		Datasource:        ds,
		Kpi:               catalog.Kpi{Formula: "x", Symbols: map[string]catalog.WarehouseMetric{"x": {SelectExpression: "COUNT(*)"}}},
		RequestedInterval: catalog.NewDatetimeInterval(day("2022-01-01"), day("2022-01-10")),
		ClampedInterval:   catalog.NewDatetimeInterval(day("2022-01-01"), day("2022-01-10")),
		XAxisColumn:       catalog.ColumnRef{ColumnID: catalog.DatePartitionColumn},
	}
}

func TestForResolvesKnownStrategiesAndFailsOnUnknown(t *testing.T) {
	if _, err := For(catalog.DatePartitionColumn); err != nil {
		t.Fatal(err)
	}
	if _, err := For(catalog.CohortDayColumn); err != nil {
		t.Fatal(err)
	}
	if _, err := For("nonsense"); err == nil {
		t.Fatal("expected an error for an unrecognized x-axis column")
	}
}

func TestDateStrategyCompareAlignmentShiftsAndFilters(t *testing.T) {
	q := simpleQuery()
	q.HasCompare = true
	q.CompareRequested = catalog.NewDatetimeInterval(day("2021-12-20"), day("2021-12-29"))
	q.CompareClamped = q.CompareRequested

	fragment := tabular.New(nil, []tabular.Row{
		{XAxis: day("2021-12-29"), Value: 5},
	})
	wh := &fakeWarehouse{result: fragment}

	compared, err := DateStrategy{}.GetWarehouseComparedResults(context.Background(), q, wh)
	if err != nil {
		t.Fatal(err)
	}
	if compared.CompareResults == nil {
		t.Fatal("expected compare results to be populated")
	}
	x, ok := compared.CompareResults.Get("x")
	if !ok {
		t.Fatal("expected symbol x in compare results")
	}
	if len(x.Rows) != 1 {
		t.Fatalf("expected the shifted row to fall inside the requested interval, got %d rows", len(x.Rows))
	}
	offset, _ := q.CompareAlignOffset()
	want := day("2021-12-29").AddDate(0, 0, offset)
	if !x.Rows[0].XAxis.(time.Time).Equal(want) {
		t.Fatalf("expected shifted x-axis %v, got %v", want, x.Rows[0].XAxis)
	}
}

func TestDateStrategyIdentityResultUsesSumSumRollups(t *testing.T) {
	rr := DateStrategy{}.GetIdentityResult(catalog.NewDatetimeInterval(day("2022-01-01"), day("2022-01-03")), catalog.GrainDay, nil, nil)
	if rr.RollupXAxis != catalog.ReducerSum || rr.RollupYAxis != catalog.ReducerSum {
		t.Fatalf("expected sum/sum identity rollups, got %v/%v", rr.RollupXAxis, rr.RollupYAxis)
	}
	if len(rr.Result.Rows) != 3 {
		t.Fatalf("expected 3 identity rows for a 3-day interval, got %d", len(rr.Result.Rows))
	}
}

func TestCohortDayPreprocessAppendsRegistrationFilterAndStretchesInterval(t *testing.T) {
	q := simpleQuery()
	q.XAxisColumn = catalog.ColumnRef{ColumnID: catalog.CohortDayColumn}
	wh := &fakeWarehouse{result: tabular.Empty(nil)}

	if _, err := (CohortDayStrategy{}).GetWarehouseComparedResults(context.Background(), q, wh); err != nil {
		t.Fatal(err)
	}
	if len(wh.submissions) != 1 {
		t.Fatalf("expected exactly one submission, got %d", len(wh.submissions))
	}
	sub := wh.submissions[0]
	foundFilter := false
	for _, f := range sub.ColumnFilters {
		if f.Column.ColumnID == catalog.RegistrationDateColumn && f.Operator == catalog.OpBetween {
			foundFilter = true
		}
	}
	if !foundFilter {
		t.Fatal("expected a registration_date BETWEEN filter to be appended")
	}
	wantDays := q.ClampedInterval.Days()
	gotTo := sub.DateIntervals[0].DateTo
	wantTo := q.ClampedInterval.DateTo.AddDate(0, 0, wantDays)
	if !gotTo.Equal(wantTo) {
		t.Fatalf("expected date_to stretched by %d days to %v, got %v", wantDays, wantTo, gotTo)
	}
}

func TestCohortDayStrategyProducesNoTotals(t *testing.T) {
	q := simpleQuery()
	identity := CohortDayStrategy{}.GetIdentityResult(q.ClampedInterval, "", nil, nil)
	rollups := tabular.NewRollupDataResults()
	total, err := CohortDayStrategy{}.GetTotal(q, identity, rollups)
	if err != nil {
		t.Fatal(err)
	}
	if total != nil {
		t.Fatal("expected cohort-day mode to produce no totals")
	}
}
