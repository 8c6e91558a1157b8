// Package columnvalues implements the column-values-submit endpoint
// (spec.md §6: up to 500 distinct values a column took over a date
// interval). internal/xaxis.For only dispatches date_/cohort_day columns,
// so this is a single-metric warehouse fetch built directly on
// internal/sqlast and internal/colsource rather than going through
// internal/chartpipeline.
package columnvalues

import (
	"context"
	"fmt"

	"neobase-ai/internal/catalog"
	"neobase-ai/internal/colsource"
	"neobase-ai/internal/sqlast"
	"neobase-ai/internal/warehouse"
)

// maxValues mirrors the group-by overload ceiling chartpipeline enforces
// (catalog.BigQueryMaxDistinctGroupByValues) since both describe the same
// "too many distinct values to show" limit.
const maxValues = catalog.BigQueryMaxDistinctGroupByValues

// Query asks for the distinct values ColumnID took in Datasource over
// DateInterval.
type Query struct {
	Datasource   catalog.Datasource
	ColumnID     string
	DateInterval catalog.DatetimeInterval
}

type Service struct {
	warehouses *warehouse.Manager
}

func NewService(wm *warehouse.Manager) *Service {
	return &Service{warehouses: wm}
}

// Execute returns the distinct values found, in descending frequency order,
// capped at maxValues.
func (s *Service) Execute(ctx context.Context, q Query) ([]any, error) {
	if q.DateInterval.Days() <= 0 {
		return nil, nil
	}

	driver, err := s.warehouses.Driver(q.Datasource.WarehouseKind)
	if err != nil {
		return nil, err
	}

	sqlText, err := buildQuery(q)
	if err != nil {
		return nil, err
	}

	future, err := driver.Execute(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	result, err := future.Wait(ctx)
	if err != nil {
		return nil, err
	}

	values := make([]any, 0, len(result.Rows))
	for _, row := range result.Rows {
		values = append(values, row.XAxis)
	}
	return values, nil
}

// buildQuery resolves ColumnID through a plain TableColumnSource (computed
// and user-history columns aren't addressable by this endpoint — only
// materialized table columns) and groups by it, ordered by occurrence count
// descending, capped at maxValues rows.
func buildQuery(q Query) (string, error) {
	table := sqlast.NewTable(q.Datasource.Schema, q.Datasource.TableName)

	valueExpr, err := (colsource.TableColumnSource{Table: table}).GetAndLoadColumn(q.ColumnID, nil)
	if err != nil {
		return "", fmt.Errorf("columnvalues: %w", err)
	}
	valueSelect := sqlast.NewExpression(valueExpr.ToReferenceSQL()).AsAlias(catalog.XAxisColumnAlias)
	countExpr := sqlast.NewExpression("COUNT(1)").AsAlias(catalog.DataColumnAlias)

	dateFilter, err := sqlast.FromDate(
		table.Column(catalog.DatePartitionColumn, "").ToReferenceSQL(),
		q.DateInterval.DateFrom.Format("2006-01-02"),
		q.DateInterval.DateTo.Format("2006-01-02"),
	)
	if err != nil {
		return "", fmt.Errorf("columnvalues: %w", err)
	}

	stmt := sqlast.NewSelectStatement().
		From(table).
		SetSelect(valueSelect, countExpr).
		Where(dateFilter).
		SetGroupBy(valueExpr).
		OrderBy(sqlast.NewExpression(countExpr.ToReferenceSQL() + " DESC").AsAlias("")).
		Limit(maxValues)

	qb := sqlast.NewQueryBuilder()
	qb.Statement = stmt
	return qb.ToSQL(), nil
}
