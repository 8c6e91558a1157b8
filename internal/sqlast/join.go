package sqlast

import "fmt"

type JoinType string

const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
)

// Join is a table plus a join type and an ON boolean expression, extensible
// with And/Or before the statement is rendered.
type Join struct {
	Type  JoinType
	Table TableLike
	on    *BooleanExpression
}

func InnerJoin(table TableLike) *Join { return &Join{Type: JoinInner, Table: table} }
func LeftJoin(table TableLike) *Join  { return &Join{Type: JoinLeft, Table: table} }

func (j *Join) On(expr *BooleanExpression) *Join {
	j.on = expr
	return j
}

func (j *Join) And(expr *BooleanExpression) *Join {
	j.on.And(expr)
	return j
}

func (j *Join) Or(expr *BooleanExpression) *Join {
	j.on.Or(expr)
	return j
}

func (j *Join) ToSQL() string {
	onSQL := ""
	if j.on != nil {
		onSQL = j.on.ToSQL()
	}
	return fmt.Sprintf("%s JOIN %s ON %s", j.Type, j.Table.ToSQL(), onSQL)
}
