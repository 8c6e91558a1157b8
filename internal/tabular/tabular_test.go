package tabular

import (
	"testing"
	"time"

	"neobase-ai/internal/catalog"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestScalarArithmeticCommutative(t *testing.T) {
	tbl := New(nil, []Row{{XAxis: mustDate("2022-01-01"), Value: 4}})

	plus := tbl.AddScalar(3)
	plusCommuted := tbl.MapValue(func(v float64) float64 { return 3 + v })
	if plus.Rows[0].Value != plusCommuted.Rows[0].Value {
		t.Fatalf("T+a != a+T: %v vs %v", plus.Rows[0].Value, plusCommuted.Rows[0].Value)
	}

	mul := tbl.MulScalar(5)
	mulCommuted := tbl.MapValue(func(v float64) float64 { return 5 * v })
	if mul.Rows[0].Value != mulCommuted.Rows[0].Value {
		t.Fatalf("T*a != a*T")
	}
}

func TestDivisionByZeroYieldsZero(t *testing.T) {
	tbl := New(nil, []Row{{XAxis: 1, Value: 10}})
	got := tbl.DivScalar(0)
	if got.Rows[0].Value != 0 {
		t.Fatalf("expected safe division to zero, got %v", got.Rows[0].Value)
	}
}

func TestMergeValuesIsLeftUnit(t *testing.T) {
	interval := catalog.NewDatetimeInterval(mustDate("2022-01-01"), mustDate("2022-01-03"))
	identity := FromDateInterval(interval, catalog.GrainDay, []string{"country"}, [][]any{{"US"}, {"UK"}})

	fragment := New([]string{"country"}, []Row{
		{XAxis: mustDate("2022-01-02"), GroupBy: []any{"US"}, Value: 7},
	})

	merged := identity.MergeValues(fragment)
	if len(merged.Rows) != len(identity.Rows) {
		t.Fatalf("merge changed row count: got %d want %d", len(merged.Rows), len(identity.Rows))
	}

	var found bool
	for _, r := range merged.Rows {
		if r.XAxis.(time.Time).Equal(mustDate("2022-01-02")) && r.GroupBy[0] == "US" {
			found = true
			if r.Value != 7 {
				t.Fatalf("expected fragment value 7, got %v", r.Value)
			}
		}
		if r.XAxis.(time.Time).Equal(mustDate("2022-01-01")) && r.GroupBy[0] == "US" && r.Value != 0 {
			t.Fatalf("expected zero elsewhere, got %v", r.Value)
		}
	}
	if !found {
		t.Fatal("fragment row not found in merged result")
	}
}

func TestTrimZerosLaws(t *testing.T) {
	allZero := New(nil, []Row{{XAxis: 0, Value: 0}, {XAxis: 1, Value: 0}})
	if got := allZero.TrimZeros(); len(got.Rows) != 0 {
		t.Fatalf("all-zero partition should be dropped entirely, got %d rows", len(got.Rows))
	}

	mixed := New(nil, []Row{
		{XAxis: 0, Value: 0},
		{XAxis: 1, Value: 5},
		{XAxis: 2, Value: 0},
		{XAxis: 3, Value: 6},
		{XAxis: 4, Value: 0},
	})
	trimmed := mixed.TrimZeros()
	if len(trimmed.Rows) != 3 {
		t.Fatalf("expected interior zero run preserved with 3 rows, got %d", len(trimmed.Rows))
	}
	if trimmed.Rows[0].XAxis != 1 || trimmed.Rows[2].XAxis != 3 {
		t.Fatalf("unexpected trim boundaries: %+v", trimmed.Rows)
	}

	again := trimmed.TrimZeros()
	if len(again.Rows) != len(trimmed.Rows) {
		t.Fatalf("trim not idempotent")
	}
}

func TestGroupByXAxisUniquesKeys(t *testing.T) {
	tbl := New([]string{"country"}, []Row{
		{XAxis: 0, GroupBy: []any{"US"}, Value: 1},
		{XAxis: 0, GroupBy: []any{"US"}, Value: 2},
		{XAxis: 0, GroupBy: []any{"UK"}, Value: 5},
	})
	got := tbl.GroupByXAxis(catalog.ReducerSum)
	if len(got.Rows) != 2 {
		t.Fatalf("expected 2 unique keys, got %d", len(got.Rows))
	}
}

func TestGroupByGroupByValuesNoOpsWithoutGroupByColumns(t *testing.T) {
	tbl := New(nil, []Row{{XAxis: 0, Value: 1}, {XAxis: 0, Value: 2}})
	got := tbl.GroupByGroupByValues(catalog.ReducerSum)
	if len(got.Rows) != len(tbl.Rows) {
		t.Fatalf("expected a no-op with no group-by columns, got %d rows from %d", len(got.Rows), len(tbl.Rows))
	}
}

func TestGroupByGroupByValuesCollapsesFullMergeKeyLikeGroupByXAxis(t *testing.T) {
	tbl := New([]string{"country"}, []Row{
		{XAxis: 0, GroupBy: []any{"US"}, Value: 1},
		{XAxis: 0, GroupBy: []any{"US"}, Value: 2},
		{XAxis: 1, GroupBy: []any{"US"}, Value: 5},
	})
	got := tbl.GroupByGroupByValues(catalog.ReducerSum)
	if len(got.Rows) != 2 {
		t.Fatalf("expected the same full-merge-key grouping as GroupByXAxis, got %d rows", len(got.Rows))
	}
}

func TestFilterByGroupByValuesPreservesOrder(t *testing.T) {
	tbl := New([]string{"g"}, []Row{
		{XAxis: 1, GroupBy: []any{"a"}, Value: 1},
		{XAxis: 1, GroupBy: []any{"b"}, Value: 2},
		{XAxis: 1, GroupBy: []any{"c"}, Value: 3},
	})
	got := tbl.FilterByGroupByValues([][]any{{"c"}, {"b"}})
	if len(got.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got.Rows))
	}
	if got.Rows[0].GroupBy[0] != "c" || got.Rows[1].GroupBy[0] != "b" {
		t.Fatalf("expected order [c, b], got %+v", got.Rows)
	}
}
