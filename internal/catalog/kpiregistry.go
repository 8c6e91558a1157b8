package catalog

import (
	"fmt"
	"strings"
)

// FullID splits a "datasource_id.column_or_kpi_id" reference exactly as
// chart and column-values requests name a metric or column
// (original_source's DataSourceRepository.load_column_by_full_id /
// KpiRepository.load_by_full_kpi_id both split on the first dot).
type FullID struct {
	DatasourceID string
	ID           string
}

func ParseFullID(full string) (FullID, error) {
	parts := strings.SplitN(full, ".", 2)
	if len(parts) != 2 {
		return FullID{}, fmt.Errorf("catalog: malformed id %q, want datasource_id.id", full)
	}
	return FullID{DatasourceID: parts[0], ID: parts[1]}, nil
}

// ResolveKpi synthesizes a generic KPI over one of a datasource's columns,
// mirroring InMemoryKpiRepository's generic KPI families: a bare event
// count ("cnt"), SUM/AVG of every numeric column ("sum_<col>"/"avg_<col>"),
// and COUNT(DISTINCT …) of every string column ("cnt_uniq_<col>"). The
// original's per-app kpi_definitions packages (hand-authored KPIs like
// pct_offline_events) are out of scope — every app gets the same generic
// set derived from its catalog columns.
func ResolveKpi(ds Datasource, kpiID string) (Kpi, bool) {
	if kpiID == "cnt" {
		return Kpi{
			ID:      kpiID,
			Formula: "x",
			Symbols: map[string]WarehouseMetric{"x": {SelectExpression: "COUNT(*)", SourceDatasource: ds.ID}},
			Rollup:  Rollup{RollupXAxis: ReducerSum, RollupYAxis: ReducerSum},
		}, true
	}

	switch {
	case strings.HasPrefix(kpiID, "sum_"):
		c, ok := numericColumn(ds, strings.TrimPrefix(kpiID, "sum_"))
		if !ok {
			return Kpi{}, false
		}
		return numericAggKpi(kpiID, ds, c, "SUM"), true
	case strings.HasPrefix(kpiID, "avg_"):
		c, ok := numericColumn(ds, strings.TrimPrefix(kpiID, "avg_"))
		if !ok {
			return Kpi{}, false
		}
		return numericAggKpi(kpiID, ds, c, "AVG"), true
	case strings.HasPrefix(kpiID, "cnt_uniq_"):
		col := strings.TrimPrefix(kpiID, "cnt_uniq_")
		c, ok := ds.Column(col)
		if !ok || c.DataType != DataTypeString {
			return Kpi{}, false
		}
		return Kpi{
			ID:      kpiID,
			Formula: "x",
			Symbols: map[string]WarehouseMetric{"x": {
				SelectExpression: fmt.Sprintf("COUNT(DISTINCT {%s})", c.ID),
				SourceDatasource: ds.ID,
			}},
			Rollup: Rollup{RollupXAxis: ReducerSum, RollupYAxis: ReducerSum},
		}, true
	default:
		return Kpi{}, false
	}
}

func numericColumn(ds Datasource, id string) (Column, bool) {
	c, ok := ds.Column(id)
	if !ok || (c.DataType != DataTypeNumber && c.DataType != DataTypeInteger) {
		return Column{}, false
	}
	return c, true
}

func numericAggKpi(kpiID string, ds Datasource, c Column, fn string) Kpi {
	return Kpi{
		ID:      kpiID,
		Formula: "x",
		Symbols: map[string]WarehouseMetric{"x": {
			SelectExpression: fmt.Sprintf("%s({%s})", fn, c.ID),
			SourceDatasource: ds.ID,
		}},
		Rollup: Rollup{RollupXAxis: ReducerSum, RollupYAxis: ReducerSum},
	}
}
