package sqlcompiler

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"neobase-ai/internal/catalog"
	"neobase-ai/internal/colsource"
	"neobase-ai/internal/sqlast"
)

// externalCteName builds the canonical CTE name for an external-table
// column: dataset/table plus a 10-hex-digit MD5 of the filter formula
// (absent filter -> no suffix). Two columns sharing (dataset, table,
// filter) collide on this name, which is what drives the CTE-fusion
// contract (spec §4.2/§4.4 item 7, scenario E).
func externalCteName(dataset, table, filter string) string {
	base := fmt.Sprintf("_external_%s_%s", dataset, table)
	if filter == "" {
		return base
	}
	sum := md5.Sum([]byte(filter))
	return base + "_" + hex.EncodeToString(sum[:])[:10]
}

type materializationState int

const (
	notMaterialized materializationState = iota
	fullyMaterialized
	partiallyMaterialized
)

// classifyMaterialization compares an external-table column's
// materialization boundary against the requested intervals' span.
func classifyMaterialization(col catalog.ExternalTableColumn, intervals []catalog.DatetimeInterval, allowMaterialized bool) materializationState {
	if !allowMaterialized || col.MaterializedFrom == nil || len(intervals) == 0 {
		return notMaterialized
	}
	minFrom, maxTo := intervals[0].DateFrom, intervals[0].DateTo
	for _, iv := range intervals[1:] {
		if iv.DateFrom.Before(minFrom) {
			minFrom = iv.DateFrom
		}
		if iv.DateTo.After(maxTo) {
			maxTo = iv.DateTo
		}
	}
	cutoff := *col.MaterializedFrom
	if !cutoff.After(minFrom) {
		return fullyMaterialized
	}
	if cutoff.After(maxTo) {
		return notMaterialized
	}
	return partiallyMaterialized
}

// newExternalResolver builds the ExternalColumnResolver a column source
// delegates to: it implements the CTE-fusion contract (append a second
// aggregation formula to an already-registered CTE rather than registering
// a second one), the deduplicated LEFT JOIN on (date_, unique_id), and the
// three materialization projection shapes from spec §4.4 item 7.
func newExternalResolver(qb *sqlast.QueryBuilder, stmt *sqlast.SelectStatement, historyTable sqlast.TableLike, allowMaterialized bool) colsource.ExternalColumnResolver {
	return func(name string, col catalog.ExternalTableColumn, intervals []catalog.DatetimeInterval) (sqlast.AliasedExpression, error) {
		userHistoryColumnRef := historyTable.Column(name, "").ToReferenceSQL()

		state := classifyMaterialization(col, intervals, allowMaterialized)
		var projection string

		if state == fullyMaterialized {
			projection = userHistoryColumnRef
		} else {
			cteName := externalCteName(col.Dataset, col.Table, col.TableFilterFormula)
			cte, exists := qb.GetCte(cteName)
			if !exists {
				cteTable := sqlast.NewTable(col.Dataset, col.Table)
				sel := sqlast.NewSelectStatement().From(cteTable)
				if col.TableFilterFormula != "" {
					sel.Where(sqlast.NewRawBooleanExpression(col.TableFilterFormula))
				}
				sel.Select(cteTable.Column(catalog.DatePartitionColumn, ""), cteTable.Column(catalog.UniqueIDColumn, ""))
				sel.SetGroupBy(cteTable.Column(catalog.DatePartitionColumn, ""), cteTable.Column(catalog.UniqueIDColumn, ""))
				cte = sqlast.NewCte(cteName, sel)
				qb.WithCte(cte)
			}
			aggAlias := "agg_" + name
			cte.Select.AppendProjection(sqlast.NewExpression(col.TableAggregationFormula).AsAlias(aggAlias))

			joinCond := sqlast.NewRawBooleanExpression(
				historyTable.Column(catalog.DatePartitionColumn, "").ToReferenceSQL() + " = " + cte.Column(catalog.DatePartitionColumn, "").ToReferenceSQL())
			joinCond.And(sqlast.NewRawBooleanExpression(
				historyTable.Column(catalog.UniqueIDColumn, "").ToReferenceSQL() + " = " + cte.Column(catalog.UniqueIDColumn, "").ToReferenceSQL()))
			newJoin := sqlast.LeftJoin(cte).On(joinCond)
			rendered := newJoin.ToSQL()
			found := false
			for _, existing := range stmt.Joins() {
				if existing.ToSQL() == rendered {
					found = true
					break
				}
			}
			if !found {
				stmt.Join(newJoin)
			}

			cteColumnRef := cte.Column(aggAlias, "").ToReferenceSQL()
			if state == partiallyMaterialized {
				from := col.MaterializedFrom.Format("2006-01-02")
				projection = fmt.Sprintf("IF(%s < DATE '%s', %s, %s)", catalog.DatePartitionColumn, from, cteColumnRef, userHistoryColumnRef)
			} else {
				projection = cteColumnRef
			}
		}

		wrapped, err := sqlast.RenderTemplate(col.ResolvedUserHistoryFormula(), func(holeName string) (string, bool) {
			if holeName == col.ColumnDefinition.ID {
				return projection, true
			}
			return "", false
		}, nil)
		if err != nil {
			return sqlast.AliasedExpression{}, err
		}
		return sqlast.NewExpression(wrapped).AsAlias(""), nil
	}
}
