// Package sqlast is a thin, string-producing SQL AST (spec §4.2): tokens
// with a ToSQL() method, assembled by internal/sqlcompiler into one SQL
// text per metric. It never parses SQL, only emits it.
package sqlast

import (
	"fmt"

	"neobase-ai/internal/catalog"
)

// SqlToken is the common rendering surface every AST node implements.
type SqlToken interface {
	ToSQL() string
}

// Expression is a fully-rendered SQL fragment (after any {name}-hole
// substitution has already happened via RenderTemplate).
type Expression struct {
	body string
}

func NewExpression(body string) Expression { return Expression{body: body} }

func (e Expression) ToDefinitionSQL() string { return e.body }
func (e Expression) ToReferenceSQL() string  { return e.body }
func (e Expression) ToSQL() string           { return e.body }

func (e Expression) AsAlias(alias string) AliasedExpression {
	return AliasedExpression{Expr: e, Alias: alias}
}

// Constant renders a literal quoted per its DataType.
type Constant struct {
	Value    string
	DataType catalog.DataType
}

func NewConstant(value string, dt catalog.DataType) Constant {
	return Constant{Value: value, DataType: dt}
}

func (c Constant) ToSQL() string {
	switch c.DataType {
	case catalog.DataTypeString:
		return fmt.Sprintf("'%s'", c.Value)
	case catalog.DataTypeDate:
		return fmt.Sprintf("DATE '%s'", c.Value)
	case catalog.DataTypeDatetime:
		return fmt.Sprintf("TIMESTAMP '%s'", c.Value)
	case catalog.DataTypeNumber, catalog.DataTypeInteger, catalog.DataTypeBoolean:
		return c.Value
	default:
		// Matches the reference behavior: an unrecognized data type is a
		// compile-time programmer error, not a runtime one to recover from.
		panic(fmt.Sprintf("sqlast: cannot render constant of data type %q", c.DataType))
	}
}

func (c Constant) ToDefinitionSQL() string { return c.ToSQL() }
func (c Constant) ToReferenceSQL() string  { return c.ToSQL() }

// AliasedExpression distinguishes an expression's definition form
// ("expr AS alias") from its reference form ("alias").
type AliasedExpression struct {
	Expr  Expression
	Alias string
}

func NewAliasedExpression(body, alias string) AliasedExpression {
	return AliasedExpression{Expr: NewExpression(body), Alias: alias}
}

func (a AliasedExpression) ToDefinitionSQL() string {
	if a.Alias == "" {
		return a.Expr.ToDefinitionSQL()
	}
	return fmt.Sprintf("%s AS %s", a.Expr.ToDefinitionSQL(), a.Alias)
}

func (a AliasedExpression) ToReferenceSQL() string {
	if a.Alias == "" {
		return a.Expr.ToReferenceSQL()
	}
	return a.Alias
}

func (a AliasedExpression) ToSQL() string { return a.ToDefinitionSQL() }
