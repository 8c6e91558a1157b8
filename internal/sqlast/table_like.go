package sqlast

import "strings"

// TableLike is anything a column reference or a FROM/JOIN clause can target.
type TableLike interface {
	SqlToken
	Column(name, alias string) AliasedExpression
}

func columnOf(tableSQL, name, alias string) AliasedExpression {
	segments := strings.Split(name, ".")
	for i, s := range segments {
		segments[i] = "`" + s + "`"
	}
	return AliasedExpression{
		Expr:  NewExpression(tableSQL + "." + strings.Join(segments, ".")),
		Alias: alias,
	}
}

// Table is a concrete `dataset.table` reference.
type Table struct {
	DatasetName string
	TableName   string
}

func NewTable(dataset, table string) Table { return Table{DatasetName: dataset, TableName: table} }

func (t Table) ToSQL() string { return "`" + t.DatasetName + "." + t.TableName + "`" }

func (t Table) Column(name, alias string) AliasedExpression {
	return columnOf(t.ToSQL(), name, alias)
}

// From renders the FROM clause for a TableLike.
type From struct {
	TableLike TableLike
}

func NewFrom(t TableLike) *From { return &From{TableLike: t} }

func (f *From) ToSQL() string { return "FROM " + f.TableLike.ToSQL() }

// Cte is a named CTE: Select is its defining SelectStatement, mutable so the
// CTE-fusion contract (§4.2) can append projections to an already
// registered CTE instead of registering a second one.
type Cte struct {
	CteName string
	Select  *SelectStatement
}

func NewCte(name string, sel *SelectStatement) *Cte {
	return &Cte{CteName: name, Select: sel}
}

func (c *Cte) ToDefinitionSQL() string {
	return c.CteName + " AS (\n" + c.Select.ToSQL() + ")"
}

// ToSQL renders a *reference* to the CTE, backtick-quoted — preserved
// exactly from the reference implementation (REDESIGN FLAG b).
func (c *Cte) ToSQL() string { return "`" + c.CteName + "`" }

func (c *Cte) Column(name, alias string) AliasedExpression {
	return columnOf(c.ToSQL(), name, alias)
}
