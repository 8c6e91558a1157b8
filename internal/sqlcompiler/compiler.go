package sqlcompiler

import (
	"fmt"

	"neobase-ai/internal/catalog"
	"neobase-ai/internal/colsource"
	"neobase-ai/internal/sqlast"
)

const dateLayout = "2006-01-02"

// DatasourceResolver looks up a datasource by id, used to resolve
// cross-datasource filters and group-bys.
type DatasourceResolver func(id string) (catalog.Datasource, bool)

// Compile assembles one SQL text per metric symbol named in query.Metrics.
func Compile(query catalog.WarehouseChartQuery, resolve DatasourceResolver) (map[string]string, error) {
	out := make(map[string]string, len(query.Metrics))
	for symbol, metric := range query.Metrics {
		sql, err := compileMetric(query, symbol, metric, resolve)
		if err != nil {
			return nil, fmt.Errorf("sqlcompiler: metric %q: %w", symbol, err)
		}
		out[symbol] = sql
	}
	return out, nil
}

func compileMetric(query catalog.WarehouseChartQuery, symbol string, metric catalog.WarehouseMetric, resolve DatasourceResolver) (string, error) {
	primary := query.Datasource
	grain := query.TimeGrain
	if grain == "" {
		grain = catalog.GrainDay
	}

	baseTable := buildBaseTable(primary)
	qb := sqlast.NewQueryBuilder()
	stmt := sqlast.NewSelectStatement().From(baseTable)

	primaryColSource := newColumnSource(primary, baseTable, qb, stmt, true)

	// Date-partition filter: OR of from_date(date_, interval) across every
	// requested interval, parenthesized.
	if len(query.DateIntervals) > 0 {
		dateColRef := baseTable.Column(catalog.DatePartitionColumn, "").ToReferenceSQL()
		var combined *sqlast.BooleanExpression
		for _, iv := range query.DateIntervals {
			f, err := sqlast.FromDate(dateColRef, iv.DateFrom.Format(dateLayout), iv.DateTo.Format(dateLayout))
			if err != nil {
				return "", err
			}
			if combined == nil {
				combined = f
			} else {
				combined.Or(f)
			}
		}
		stmt.AndWhere(sqlast.Parenthesize(combined))
	}

	valueSQL, err := renderTemplateExpr(metric.SelectExpression, primaryColSource, query.DateIntervals)
	if err != nil {
		return "", err
	}
	valueExpr := sqlast.NewExpression(valueSQL).AsAlias(catalog.DataColumnAlias)

	if metric.WhereExpression != "" {
		whereSQL, err := renderTemplateExpr(metric.WhereExpression, primaryColSource, query.DateIntervals)
		if err != nil {
			return "", err
		}
		stmt.AndWhere(sqlast.NewRawBooleanExpression(whereSQL))
	}

	for _, f := range query.ColumnFilters {
		colSource, err := columnSourceFor(f.Column.DatasourceID, primary, baseTable, primaryColSource, qb, stmt, resolve)
		if err != nil {
			return "", err
		}
		aliased, err := colSource.GetAndLoadColumn(f.Column.ColumnID, query.DateIntervals)
		if err != nil {
			return "", err
		}
		cond, err := sqlast.BooleanExpressionFromFilter(aliased.ToReferenceSQL(), f.Operator, f.Values, f.DataType)
		if err != nil {
			return "", err
		}
		stmt.AndWhere(cond)
	}

	groupByExprs := make([]sqlast.AliasedExpression, 0, len(query.ColumnGroupBys))
	for i, gb := range query.ColumnGroupBys {
		colSource, err := columnSourceFor(gb.Column.DatasourceID, primary, baseTable, primaryColSource, qb, stmt, resolve)
		if err != nil {
			return "", err
		}
		aliased, err := colSource.GetAndLoadColumn(gb.Column.ColumnID, query.DateIntervals)
		if err != nil {
			return "", err
		}
		alias := fmt.Sprintf("group_by_%d", i+1)
		groupByExprs = append(groupByExprs, sqlast.NewExpression(aliased.ToReferenceSQL()).AsAlias(alias))
	}

	xAxisExpr, err := buildXAxisExpr(primaryColSource, query.XAxisColumn.ColumnID, primary, grain, query.DateIntervals)
	if err != nil {
		return "", err
	}

	selectList := append([]sqlast.AliasedExpression{xAxisExpr}, groupByExprs...)
	selectList = append(selectList, valueExpr)
	stmt.SetSelect(selectList...)
	stmt.SetGroupBy(append([]sqlast.AliasedExpression{xAxisExpr}, groupByExprs...)...)
	stmt.OrderBy(xAxisExpr)

	qb.Statement = stmt
	return qb.ToSQL(), nil
}

// columnSourceFor resolves the column source a filter/group-by should use:
// the primary one for a local reference (empty or matching datasource id),
// or a freshly built one over the join table for a cross-datasource
// reference, ensuring the enrichment join exists first.
func columnSourceFor(datasourceID string, primary catalog.Datasource, baseTable sqlast.TableLike, primaryColSource colsource.ColumnSource, qb *sqlast.QueryBuilder, stmt *sqlast.SelectStatement, resolve DatasourceResolver) (colsource.ColumnSource, error) {
	if datasourceID == "" || datasourceID == primary.ID {
		return primaryColSource, nil
	}
	foreign, ok := resolve(datasourceID)
	if !ok {
		return nil, fmt.Errorf("sqlcompiler: unknown datasource %q", datasourceID)
	}
	joinTable, err := buildJoin(baseTable, primary, foreign, stmt)
	if err != nil {
		return nil, err
	}
	return newColumnSource(foreign, joinTable, qb, stmt, true), nil
}

// newColumnSource picks TableColumnSource or QueryUserHistoryColumnSource
// depending on whether the datasource carries a user-history definition.
func newColumnSource(ds catalog.Datasource, table sqlast.TableLike, qb *sqlast.QueryBuilder, stmt *sqlast.SelectStatement, allowMaterialized bool) colsource.ColumnSource {
	if ds.UserHistory == nil {
		return colsource.TableColumnSource{Table: table}
	}
	return &colsource.QueryUserHistoryColumnSource{
		History:         ds.UserHistory,
		Table:           table,
		ResolveExternal: newExternalResolver(qb, stmt, table, allowMaterialized),
	}
}

func renderTemplateExpr(body string, cs colsource.ColumnSource, intervals []catalog.DatetimeInterval) (string, error) {
	return sqlast.RenderTemplate(body, func(string) (string, bool) { return "", false }, func(name string) (string, error) {
		aliased, err := cs.GetAndLoadColumn(name, intervals)
		if err != nil {
			return "", err
		}
		return aliased.ToReferenceSQL(), nil
	})
}
