package sqlcompiler

import (
	"strings"
	"testing"
	"time"

	"neobase-ai/internal/catalog"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func simpleDatasource() catalog.Datasource {
	return catalog.Datasource{
		ID:          "sessions",
		Schema:      "analytics",
		TableName:   "sessions",
		Cardinality: catalog.CardinalityMany,
		TimeGrain:   catalog.GrainDay,
	}
}

func TestCompileSimpleMetric(t *testing.T) {
	ds := simpleDatasource()
	query := catalog.WarehouseChartQuery{
		Datasource: ds,
		Metrics: map[string]catalog.WarehouseMetric{
			"x": {SelectExpression: "COUNT(*)"},
		},
		DateIntervals: []catalog.DatetimeInterval{catalog.NewDatetimeInterval(day("2022-01-10"), day("2022-01-14"))},
		TimeGrain:     catalog.GrainDay,
		XAxisColumn:   catalog.ColumnRef{ColumnID: catalog.DatePartitionColumn},
	}

	out, err := Compile(query, func(string) (catalog.Datasource, bool) { return catalog.Datasource{}, false })
	if err != nil {
		t.Fatal(err)
	}
	sql := out["x"]
	if !strings.Contains(sql, "SELECT") || !strings.Contains(sql, "FROM") {
		t.Fatalf("expected a SELECT/FROM statement, got:\n%s", sql)
	}
	if !strings.Contains(sql, "GROUP BY x_axis") {
		t.Fatalf("expected GROUP BY x_axis, got:\n%s", sql)
	}
	if !strings.Contains(sql, "DATE_TRUNC(event_tstamp, DAY)") {
		t.Fatalf("expected day-grain event timestamp truncation, got:\n%s", sql)
	}
}

func TestCompileExternalTableCteFusion(t *testing.T) {
	history := catalog.NewUserHistoryDefinition()
	history.ExternalTableColumns["ltv_7d"] = catalog.ExternalTableColumn{
		Dataset:                 "billing",
		Table:                   "transactions",
		TableFilterFormula:      "status='SUCCESS'",
		TableAggregationFormula: "SUM(amount)",
		ColumnDefinition:        catalog.Column{ID: "ltv_7d", DataType: catalog.DataTypeNumber},
	}
	history.ExternalTableColumns["txn_count"] = catalog.ExternalTableColumn{
		Dataset:                 "billing",
		Table:                   "transactions",
		TableFilterFormula:      "status='SUCCESS'",
		TableAggregationFormula: "COUNT(*)",
		ColumnDefinition:        catalog.Column{ID: "txn_count", DataType: catalog.DataTypeNumber},
	}

	ds := catalog.Datasource{
		ID:          "users",
		Schema:      "analytics",
		TableName:   "user_history",
		Cardinality: catalog.CardinalityOne,
		TimeGrain:   catalog.GrainDay,
		UserHistory: history,
	}

	query := catalog.WarehouseChartQuery{
		Datasource: ds,
		Metrics: map[string]catalog.WarehouseMetric{
			"x": {SelectExpression: "COUNT(*)"},
		},
		DateIntervals:  []catalog.DatetimeInterval{catalog.NewDatetimeInterval(day("2022-01-10"), day("2022-01-14"))},
		TimeGrain:      catalog.GrainDay,
		XAxisColumn:    catalog.ColumnRef{ColumnID: catalog.DatePartitionColumn},
		ColumnGroupBys: []catalog.GroupBy{
			{Column: catalog.ColumnRef{ColumnID: "ltv_7d"}},
			{Column: catalog.ColumnRef{ColumnID: "txn_count"}},
		},
	}

	out, err := Compile(query, func(string) (catalog.Datasource, bool) { return catalog.Datasource{}, false })
	if err != nil {
		t.Fatal(err)
	}
	sql := out["x"]

	cteOccurrences := strings.Count(sql, "_external_billing_transactions_")
	if cteOccurrences == 0 {
		t.Fatalf("expected external CTE in SQL, got:\n%s", sql)
	}
	if !strings.Contains(sql, "SUM(amount)") || !strings.Contains(sql, "COUNT(*) AS agg_txn_count") {
		t.Fatalf("expected both aggregation formulas in the fused CTE, got:\n%s", sql)
	}
	if strings.Count(sql, "LEFT JOIN") != 1 {
		t.Fatalf("expected exactly one LEFT JOIN against the fused CTE, got:\n%s", sql)
	}
}
