package sqlast

import (
	"fmt"
	"strings"

	"neobase-ai/internal/apperrors"
	"neobase-ai/internal/catalog"
)

type BooleanOperator string

const (
	And BooleanOperator = "AND"
	Or  BooleanOperator = "OR"
)

type booleanExpressionNode struct {
	operator BooleanOperator
	expr     *BooleanExpression
}

func (n *booleanExpressionNode) toSQL() string {
	return fmt.Sprintf(" %s %s", n.operator, n.expr.ToSQL())
}

// BooleanExpression is a chain of boolean operands joined by AND/OR nodes
// appended to the tail of the chain.
type BooleanExpression struct {
	renderBase func() string
	next       *booleanExpressionNode
}

func newBooleanExpression(base string) *BooleanExpression {
	return &BooleanExpression{renderBase: func() string { return base }}
}

func (b *BooleanExpression) ToSQL() string {
	s := b.renderBase()
	if b.next != nil {
		s += b.next.toSQL()
	}
	return s
}

func (b *BooleanExpression) findTail() *BooleanExpression {
	cur := b
	for cur.next != nil {
		cur = cur.next.expr
	}
	return cur
}

// And appends expr to the chain with an AND node.
func (b *BooleanExpression) And(expr *BooleanExpression) *BooleanExpression {
	b.findTail().next = &booleanExpressionNode{operator: And, expr: expr}
	return b
}

// Or appends expr to the chain with an OR node. The reference
// implementation's or_() mistakenly appends an AND node (REDESIGN FLAG a);
// this is the corrected behavior per spec.md §9.
func (b *BooleanExpression) Or(expr *BooleanExpression) *BooleanExpression {
	b.findTail().next = &booleanExpressionNode{operator: Or, expr: expr}
	return b
}

// AllAnd chains a list of boolean expressions together with AND, returning
// nil for an empty list.
func AllAnd(exprs []*BooleanExpression) *BooleanExpression {
	if len(exprs) == 0 {
		return nil
	}
	head := exprs[0]
	for _, e := range exprs[1:] {
		head.And(e)
	}
	return head
}

// Parenthesize wraps the rendered SQL of expr in parentheses, producing a
// fresh chain head (so further And/Or calls on the result extend outside
// the parens).
func Parenthesize(expr *BooleanExpression) *BooleanExpression {
	rendered := "(" + expr.ToSQL() + ")"
	return &BooleanExpression{renderBase: func() string { return rendered }}
}

func quote(value string, dt catalog.DataType) string {
	return NewConstant(value, dt).ToSQL()
}

// BooleanExpressionFromFilter renders one WHERE condition per §4.2's
// operator table. exprRef is the column/expression reference SQL
// (typically an AliasedExpression's reference form).
func BooleanExpressionFromFilter(exprRef string, op catalog.FilterOperator, values []string, dt catalog.DataType) (*BooleanExpression, error) {
	switch op {
	case catalog.OpLT, catalog.OpLTE, catalog.OpGT, catalog.OpGTE, catalog.OpEQ, catalog.OpNEQ:
		if len(values) < 1 {
			return nil, fmt.Errorf("sqlast: operator %s requires one value", op)
		}
		return newBooleanExpression(fmt.Sprintf("%s %s %s", exprRef, op, quote(values[0], dt))), nil
	case catalog.OpLike:
		return newBooleanExpression(fmt.Sprintf("%s LIKE %s", exprRef, joinQuoted(values, dt))), nil
	case catalog.OpNotLike:
		return newBooleanExpression(fmt.Sprintf("%s NOT LIKE %s", exprRef, joinQuoted(values, dt))), nil
	case catalog.OpIn:
		return newBooleanExpression(fmt.Sprintf("%s IN (%s)", exprRef, joinQuoted(values, dt))), nil
	case catalog.OpNotIn:
		return newBooleanExpression(fmt.Sprintf("%s NOT IN (%s)", exprRef, joinQuoted(values, dt))), nil
	case catalog.OpIsNull:
		return newBooleanExpression(fmt.Sprintf("%s IS NULL", exprRef)), nil
	case catalog.OpIsNotNull:
		return newBooleanExpression(fmt.Sprintf("%s IS NOT NULL", exprRef)), nil
	case catalog.OpBooleanIs:
		if len(values) < 1 {
			return nil, fmt.Errorf("sqlast: operator %s requires one value", op)
		}
		return newBooleanExpression(fmt.Sprintf("%s IS %s", exprRef, quote(values[0], dt))), nil
	case catalog.OpBooleanIsNot:
		if len(values) < 1 {
			return nil, fmt.Errorf("sqlast: operator %s requires one value", op)
		}
		return newBooleanExpression(fmt.Sprintf("%s IS NOT %s", exprRef, quote(values[0], dt))), nil
	case catalog.OpBetween:
		if len(values) < 2 {
			return nil, fmt.Errorf("sqlast: operator %s requires two values", op)
		}
		return newBooleanExpression(fmt.Sprintf("%s BETWEEN %s AND %s", exprRef, quote(values[0], dt), quote(values[1], dt))), nil
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedOperator, op)
	}
}

// joinQuoted renders the non-standard comma-joined LIKE/IN literal list
// (REDESIGN FLAG c): callers of like/not_like pass one value in practice.
func joinQuoted(values []string, dt catalog.DataType) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = quote(v, dt)
	}
	return strings.Join(parts, ",")
}

// FromDate builds a BETWEEN filter over the date parts of both interval
// endpoints under DataType.date.
func FromDate(exprRef string, from, to string) (*BooleanExpression, error) {
	return BooleanExpressionFromFilter(exprRef, catalog.OpBetween, []string{from, to}, catalog.DataTypeDate)
}

// FromTimestamp builds a BETWEEN filter over the full datetime of both
// interval endpoints under DataType.datetime.
func FromTimestamp(exprRef string, from, to string) (*BooleanExpression, error) {
	return BooleanExpressionFromFilter(exprRef, catalog.OpBetween, []string{from, to}, catalog.DataTypeDatetime)
}

// NewRawBooleanExpression wraps an already-rendered SQL fragment (used for
// the base-table union filters, the x-axis date-partition OR, etc.).
func NewRawBooleanExpression(sql string) *BooleanExpression {
	return newBooleanExpression(sql)
}
