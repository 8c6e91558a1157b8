package sqlcompiler

import (
	"neobase-ai/internal/catalog"
	"neobase-ai/internal/colsource"
	"neobase-ai/internal/sqlast"
)

// buildXAxisExpr implements spec §4.4 item 6's three cases, always aliased
// x_axis.
func buildXAxisExpr(colSource colsource.ColumnSource, xAxisColumn string, primary catalog.Datasource, grain catalog.TimeGrain, intervals []catalog.DatetimeInterval) (sqlast.AliasedExpression, error) {
	if xAxisColumn != catalog.DatePartitionColumn {
		aliased, err := colSource.GetAndLoadColumn(xAxisColumn, intervals)
		if err != nil {
			return sqlast.AliasedExpression{}, err
		}
		return sqlast.NewExpression(aliased.ToReferenceSQL()).AsAlias(catalog.XAxisColumnAlias), nil
	}

	if primary.Cardinality == catalog.CardinalityMany {
		switch grain {
		case catalog.GrainMin15:
			expr := "TIMESTAMP_SUB(TIMESTAMP_TRUNC(" + catalog.EventTimestampColumn + ", HOUR), INTERVAL MOD(EXTRACT(MINUTE FROM " +
				catalog.EventTimestampColumn + "), 15) MINUTE)"
			return sqlast.NewExpression(expr).AsAlias(catalog.XAxisColumnAlias), nil
		case catalog.GrainHour:
			return sqlast.NewExpression("DATE_TRUNC(" + catalog.EventTimestampColumn + ", HOUR)").AsAlias(catalog.XAxisColumnAlias), nil
		default:
			return sqlast.NewExpression("DATE_TRUNC(" + catalog.EventTimestampColumn + ", DAY)").AsAlias(catalog.XAxisColumnAlias), nil
		}
	}

	return sqlast.NewExpression("TIMESTAMP(" + catalog.DatePartitionColumn + ")").AsAlias(catalog.XAxisColumnAlias), nil
}
