package sqlast

import "strings"

// Statement is anything a QueryBuilder can hold as its trailing body.
type Statement interface {
	SqlToken
}

// SelectStatement is assembled by chaining From/Select/SelectStar/Join/
// Where/AndWhere/OrWhere/GroupBy/OrderBy/Limit. Emission order is SELECT,
// FROM, joins (newline-separated), WHERE, GROUP BY, ORDER BY, LIMIT, with
// empty clauses suppressed.
type SelectStatement struct {
	selectExprs []AliasedExpression
	selectStar  bool
	from        *From
	joins       []*Join
	where       *BooleanExpression
	groupBys    []AliasedExpression
	orderBys    []AliasedExpression
	limit       *int
}

func NewSelectStatement() *SelectStatement { return &SelectStatement{} }

func (s *SelectStatement) From(t TableLike) *SelectStatement {
	s.from = NewFrom(t)
	return s
}

func (s *SelectStatement) Select(exprs ...AliasedExpression) *SelectStatement {
	s.selectExprs = append(s.selectExprs, exprs...)
	return s
}

// SetSelect replaces the projection list wholesale (used once the compiler
// knows the final [x_axis, group_by_1…n, value] list, per spec §4.4 item 2).
func (s *SelectStatement) SetSelect(exprs ...AliasedExpression) *SelectStatement {
	s.selectExprs = exprs
	return s
}

// AppendProjection adds one more projection to the SELECT list — used by
// the CTE-fusion contract when a second aggregation formula shares an
// already-registered CTE.
func (s *SelectStatement) AppendProjection(expr AliasedExpression) {
	s.selectExprs = append(s.selectExprs, expr)
}

func (s *SelectStatement) SelectStar() *SelectStatement {
	s.selectStar = true
	return s
}

func (s *SelectStatement) Join(j *Join) *SelectStatement {
	s.joins = append(s.joins, j)
	return s
}

func (s *SelectStatement) Joins() []*Join { return s.joins }

func (s *SelectStatement) Where(expr *BooleanExpression) *SelectStatement {
	s.where = expr
	return s
}

// AndWhere ANDs expr onto the existing WHERE, or sets it if none exists.
func (s *SelectStatement) AndWhere(expr *BooleanExpression) *SelectStatement {
	if s.where == nil {
		s.where = expr
		return s
	}
	s.where.And(expr)
	return s
}

// OrWhere ORs expr onto the existing WHERE, or sets it if none exists.
func (s *SelectStatement) OrWhere(expr *BooleanExpression) *SelectStatement {
	if s.where == nil {
		s.where = expr
		return s
	}
	s.where.Or(expr)
	return s
}

func (s *SelectStatement) GroupBy(exprs ...AliasedExpression) *SelectStatement {
	s.groupBys = append(s.groupBys, exprs...)
	return s
}

func (s *SelectStatement) SetGroupBy(exprs ...AliasedExpression) *SelectStatement {
	s.groupBys = exprs
	return s
}

func (s *SelectStatement) OrderBy(exprs ...AliasedExpression) *SelectStatement {
	s.orderBys = append(s.orderBys, exprs...)
	return s
}

func (s *SelectStatement) Limit(n int) *SelectStatement {
	s.limit = &n
	return s
}

func (s *SelectStatement) ToSQL() string {
	var lines []string

	switch {
	case s.selectStar:
		lines = append(lines, "SELECT *")
	case len(s.selectExprs) > 0:
		defs := make([]string, len(s.selectExprs))
		for i, e := range s.selectExprs {
			defs[i] = e.ToDefinitionSQL()
		}
		lines = append(lines, "SELECT "+strings.Join(defs, ", "))
	}

	if s.from != nil {
		lines = append(lines, s.from.ToSQL())
	}

	if len(s.joins) > 0 {
		joinLines := make([]string, len(s.joins))
		for i, j := range s.joins {
			joinLines[i] = j.ToSQL()
		}
		lines = append(lines, strings.Join(joinLines, "\n"))
	}

	if s.where != nil {
		lines = append(lines, "WHERE "+s.where.ToSQL())
	}

	if len(s.groupBys) > 0 {
		refs := make([]string, len(s.groupBys))
		for i, e := range s.groupBys {
			refs[i] = e.ToReferenceSQL()
		}
		lines = append(lines, "GROUP BY "+strings.Join(refs, ", "))
	}

	if len(s.orderBys) > 0 {
		refs := make([]string, len(s.orderBys))
		for i, e := range s.orderBys {
			refs[i] = e.ToReferenceSQL()
		}
		lines = append(lines, "ORDER BY "+strings.Join(refs, ", "))
	}

	if s.limit != nil {
		lines = append(lines, "LIMIT "+itoa(*s.limit))
	}

	return strings.Join(lines, "\n")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

// UnionStatement joins its inner selects with UNION ALL by default, or
// UNION if All is false.
type UnionStatement struct {
	Selects []*SelectStatement
	All     bool
}

func NewUnionAll(selects ...*SelectStatement) *UnionStatement {
	return &UnionStatement{Selects: selects, All: true}
}

func (u *UnionStatement) ToSQL() string {
	sep := "\nUNION\n"
	if u.All {
		sep = "\n UNION ALL\n"
	}
	parts := make([]string, len(u.Selects))
	for i, s := range u.Selects {
		parts[i] = s.ToSQL()
	}
	return strings.Join(parts, sep)
}

// QueryBuilder owns an ordered CTE map and a trailing statement.
type QueryBuilder struct {
	cteOrder  []string
	ctes      map[string]*Cte
	Statement Statement
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{ctes: map[string]*Cte{}}
}

// WithCte inserts cte. If its name begins with an underscore it is inserted
// at the front of the map so helper CTEs render before user-named ones; it
// is a no-op if a CTE with that name is already registered (callers should
// use GetCte + AppendProjection to fuse into an existing one instead).
func (qb *QueryBuilder) WithCte(cte *Cte) *QueryBuilder {
	if _, exists := qb.ctes[cte.CteName]; exists {
		return qb
	}
	qb.ctes[cte.CteName] = cte
	if strings.HasPrefix(cte.CteName, "_") {
		qb.cteOrder = append([]string{cte.CteName}, qb.cteOrder...)
	} else {
		qb.cteOrder = append(qb.cteOrder, cte.CteName)
	}
	return qb
}

func (qb *QueryBuilder) GetCte(name string) (*Cte, bool) {
	c, ok := qb.ctes[name]
	return c, ok
}

func (qb *QueryBuilder) ToSQL() string {
	var sb strings.Builder
	if len(qb.cteOrder) > 0 {
		defs := make([]string, len(qb.cteOrder))
		for i, name := range qb.cteOrder {
			defs[i] = qb.ctes[name].ToDefinitionSQL()
		}
		sb.WriteString("WITH " + strings.Join(defs, ",\n"))
		sb.WriteString("\n")
	}
	sb.WriteString(qb.Statement.ToSQL())

	var kept []string
	for _, line := range strings.Split(sb.String(), "\n") {
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
