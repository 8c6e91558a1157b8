package sqlcompiler

import (
	"fmt"

	"neobase-ai/internal/apperrors"
	"neobase-ai/internal/catalog"
	"neobase-ai/internal/sqlast"
)

// buildJoin implements prepare_many_rows_per_user_to_one_row_per_user
// (spec §4.4 item 5): fails IllegalJoin unless primary has Cardinality.many
// and the join datasource has Cardinality.one, builds a deterministic
// INNER JOIN on (date_, unique_id), and skips adding it if an equivalent
// join (by rendered SQL) is already present.
func buildJoin(baseTable sqlast.TableLike, primary, join catalog.Datasource, stmt *sqlast.SelectStatement) (sqlast.TableLike, error) {
	if primary.Cardinality != catalog.CardinalityMany || join.Cardinality != catalog.CardinalityOne {
		return nil, fmt.Errorf("%w: join requires primary cardinality many and join datasource cardinality one (got %s, %s)",
			apperrors.ErrIllegalJoin, primary.Cardinality, join.Cardinality)
	}

	joinTable := sqlast.NewTable(join.Schema, join.TableName)
	dateCond := sqlast.NewRawBooleanExpression(
		baseTable.Column(catalog.DatePartitionColumn, "").ToReferenceSQL() + " = " + joinTable.Column(catalog.DatePartitionColumn, "").ToReferenceSQL())
	idCond := sqlast.NewRawBooleanExpression(
		baseTable.Column(catalog.UniqueIDColumn, "").ToReferenceSQL() + " = " + joinTable.Column(catalog.UniqueIDColumn, "").ToReferenceSQL())
	dateCond.And(idCond)

	newJoin := sqlast.InnerJoin(joinTable).On(dateCond)
	rendered := newJoin.ToSQL()
	for _, existing := range stmt.Joins() {
		if existing.ToSQL() == rendered {
			return joinTable, nil
		}
	}
	stmt.Join(newJoin)
	return joinTable, nil
}
