// Package sqlcompiler assembles one SQL text per metric from a
// WarehouseChartQuery: base table (raw ∪ live-load), filters (local vs
// cross-datasource), group-bys, x-axis, metric SELECT and WHERE (spec §4.4).
package sqlcompiler

import (
	"neobase-ai/internal/catalog"
	"neobase-ai/internal/sqlast"
)

// buildBaseTable returns the FROM target for a datasource. Event
// datasources union an archival fragment and a live-load fragment under a
// CTE named "base"; everything else is just the table itself.
func buildBaseTable(ds catalog.Datasource) sqlast.TableLike {
	if !ds.IsEvent() {
		return sqlast.NewTable(ds.Schema, ds.TableName)
	}

	archival := sqlast.NewTable(ds.Schema, ds.TableName)
	liveLoad := sqlast.NewTable(ds.LiveLoadSchema, ds.TableName)

	archivalSelect := sqlast.NewSelectStatement().From(archival).SelectStar().Where(rawArchivalFilter(ds))
	liveLoadSelect := sqlast.NewSelectStatement().From(liveLoad).SelectStar().Where(liveLoadFilter(ds))
	union := sqlast.NewUnionAll(archivalSelect, liveLoadSelect)

	body := rawUnionTable{body: "(\n" + union.ToSQL() + "\n)"}
	cteSelect := sqlast.NewSelectStatement().SelectStar().From(body)
	return sqlast.NewCte("base", cteSelect)
}

// rawUnionTable adapts a parenthesized UNION ALL body to the TableLike
// surface so it can sit in a FROM clause.
type rawUnionTable struct {
	body string
}

func (r rawUnionTable) ToSQL() string { return r.body }
func (r rawUnionTable) Column(name, alias string) sqlast.AliasedExpression {
	return sqlast.NewAliasedExpression(r.body+"."+name, alias)
}

func rawArchivalFilter(ds catalog.Datasource) *sqlast.BooleanExpression {
	if ds.RawDataAvailability == nil {
		return sqlast.NewRawBooleanExpression("FALSE")
	}
	from := ds.RawDataAvailability.DateFrom.Format("2006-01-02")
	to := ds.RawDataAvailability.DateTo.Format("2006-01-02")
	f, err := sqlast.FromDate(catalog.DatePartitionColumn, from, to)
	if err != nil {
		return sqlast.NewRawBooleanExpression("FALSE")
	}
	return f
}

func liveLoadFilter(ds catalog.Datasource) *sqlast.BooleanExpression {
	afterRaw := "TRUE"
	if ds.RawDataAvailability != nil {
		to := ds.RawDataAvailability.DateTo.Format("2006-01-02")
		afterRaw = catalog.DatePartitionColumn + " > DATE '" + to + "'"
	}
	sandbox := catalog.EventSandboxColumn + " IS NOT TRUE"
	expr := sqlast.NewRawBooleanExpression(afterRaw)
	expr.And(sqlast.NewRawBooleanExpression(sandbox))
	return expr
}
