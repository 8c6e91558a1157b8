// Package colsource resolves a logical column name, plus the date intervals
// a query spans, into a SQL expression — potentially registering CTEs and
// joins as a side effect (spec §4.3). The CTE-fusion mechanics themselves
// (canonical naming, materialization IF-branches, join dedup — spec §4.4
// item 7) live in internal/sqlcompiler, which owns the shared QueryBuilder;
// a ColumnSource here only dispatches by column namespace and defers
// external-table resolution to a resolver function the compiler injects.
package colsource

import (
	"fmt"

	"neobase-ai/internal/apperrors"
	"neobase-ai/internal/catalog"
	"neobase-ai/internal/sqlast"
)

// ColumnSource turns a logical column name into an SQL expression.
type ColumnSource interface {
	GetAndLoadColumn(columnName string, dateIntervals []catalog.DatetimeInterval) (sqlast.AliasedExpression, error)
}

// TableColumnSource returns table.column(name) verbatim.
type TableColumnSource struct {
	Table sqlast.TableLike
}

func (s TableColumnSource) GetAndLoadColumn(name string, _ []catalog.DatetimeInterval) (sqlast.AliasedExpression, error) {
	return s.Table.Column(name, ""), nil
}

// ExternalColumnResolver resolves an external-table-namespace column,
// applying the CTE-fusion contract (internal/sqlcompiler).
type ExternalColumnResolver func(name string, col catalog.ExternalTableColumn, intervals []catalog.DatetimeInterval) (sqlast.AliasedExpression, error)

func noLookup(string) (string, bool) { return "", false }

func resolveComputed(self ColumnSource, formula string, intervals []catalog.DatetimeInterval) (sqlast.AliasedExpression, error) {
	rendered, err := sqlast.RenderTemplate(formula, noLookup, func(hole string) (string, error) {
		aliased, err := self.GetAndLoadColumn(hole, intervals)
		if err != nil {
			return "", err
		}
		return aliased.ToReferenceSQL(), nil
	})
	if err != nil {
		return sqlast.AliasedExpression{}, err
	}
	return sqlast.NewExpression(rendered).AsAlias(""), nil
}

// QueryUserHistoryColumnSource is the read path against the per-user
// history table.
type QueryUserHistoryColumnSource struct {
	History         *catalog.UserHistoryDefinition
	Table           sqlast.TableLike
	ResolveExternal ExternalColumnResolver
}

func (s *QueryUserHistoryColumnSource) GetAndLoadColumn(name string, intervals []catalog.DatetimeInterval) (sqlast.AliasedExpression, error) {
	switch s.History.Lookup(name) {
	case catalog.NamespaceRegistration, catalog.NamespaceTotal:
		return s.Table.Column(name, ""), nil
	case catalog.NamespaceExternalTable:
		col := s.History.ExternalTableColumns[name]
		return s.ResolveExternal(name, col, intervals)
	case catalog.NamespaceComputed:
		return resolveComputed(s, s.History.ComputedColumns[name], intervals)
	default:
		return sqlast.AliasedExpression{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownColumn, name)
	}
}

// InsertUserHistoryColumnSource is the write path used when building daily
// insertions. Every date interval passed in must be degenerate (a single
// instant); registration columns resolve by joining a `_base` CTE (built by
// the caller against the per-app `main` dataset of the registration table)
// rather than reading the history table directly. Not used on the read
// path, but part of the column source's public surface per spec §4.3.
type InsertUserHistoryColumnSource struct {
	History         *catalog.UserHistoryDefinition
	BaseCte         *sqlast.Cte
	ResolveExternal ExternalColumnResolver
}

func isDegenerate(iv catalog.DatetimeInterval) bool {
	return iv.DateFrom.Equal(iv.DateTo)
}

func (s *InsertUserHistoryColumnSource) GetAndLoadColumn(name string, intervals []catalog.DatetimeInterval) (sqlast.AliasedExpression, error) {
	for _, iv := range intervals {
		if !isDegenerate(iv) {
			return sqlast.AliasedExpression{}, fmt.Errorf("colsource: insert path requires degenerate date intervals, got %s..%s", iv.DateFrom, iv.DateTo)
		}
	}
	switch s.History.Lookup(name) {
	case catalog.NamespaceRegistration, catalog.NamespaceTotal:
		return s.BaseCte.Column(name, ""), nil
	case catalog.NamespaceExternalTable:
		col := s.History.ExternalTableColumns[name]
		return s.ResolveExternal(name, col, intervals)
	case catalog.NamespaceComputed:
		return resolveComputed(s, s.History.ComputedColumns[name], intervals)
	default:
		return sqlast.AliasedExpression{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownColumn, name)
	}
}
