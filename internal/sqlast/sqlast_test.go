package sqlast

import (
	"strings"
	"testing"

	"neobase-ai/internal/catalog"
)

func TestOrAppendsOrNodeNotAnd(t *testing.T) {
	a := NewRawBooleanExpression("a = 1")
	b := NewRawBooleanExpression("b = 2")
	a.Or(b)
	got := a.ToSQL()
	if got != "a = 1 OR b = 2" {
		t.Fatalf("expected OR node, got %q", got)
	}
}

func TestCteReferenceIsBacktickQuoted(t *testing.T) {
	cte := NewCte("my_cte", NewSelectStatement().From(NewTable("ds", "t")).SelectStar())
	if cte.ToSQL() != "`my_cte`" {
		t.Fatalf("expected backtick-quoted reference, got %q", cte.ToSQL())
	}
}

func TestLikeJoinsValuesWithComma(t *testing.T) {
	expr, err := BooleanExpressionFromFilter("col", catalog.OpLike, []string{"a%", "b%"}, catalog.DataTypeString)
	if err != nil {
		t.Fatal(err)
	}
	want := "col LIKE 'a%','b%'"
	if expr.ToSQL() != want {
		t.Fatalf("got %q want %q", expr.ToSQL(), want)
	}
}

func TestQueryBuilderStripsBlankLinesAndOrdersUnderscoreCtesFirst(t *testing.T) {
	qb := NewQueryBuilder()
	qb.WithCte(NewCte("user_cte", NewSelectStatement().From(NewTable("ds", "a")).SelectStar()))
	qb.WithCte(NewCte("_helper", NewSelectStatement().From(NewTable("ds", "b")).SelectStar()))
	qb.Statement = NewSelectStatement().From(NewTable("ds", "c")).SelectStar()

	sql := qb.ToSQL()
	if strings.Contains(sql, "\n\n") {
		t.Fatalf("expected blank lines collapsed, got:\n%s", sql)
	}
	if strings.Index(sql, "_helper") > strings.Index(sql, "user_cte") {
		t.Fatalf("expected underscore-prefixed CTE first, got:\n%s", sql)
	}
}

func TestCteFusionAppendsSecondProjectionToSameCte(t *testing.T) {
	qb := NewQueryBuilder()
	cteName := "_external_ds_t_abc123"
	sel := NewSelectStatement().From(NewTable("ds", "t"))
	sel.Select(NewAliasedExpression("SUM(a)", "agg_a"))
	qb.WithCte(NewCte(cteName, sel))

	existing, ok := qb.GetCte(cteName)
	if !ok {
		t.Fatal("expected cte to be registered")
	}
	existing.Select.AppendProjection(NewAliasedExpression("SUM(b)", "agg_b"))

	if strings.Count(existing.Select.ToSQL(), "SELECT ") != 1 {
		t.Fatalf("expected a single SELECT clause holding both projections, got:\n%s", existing.Select.ToSQL())
	}
	if !strings.Contains(existing.Select.ToSQL(), "agg_a") || !strings.Contains(existing.Select.ToSQL(), "agg_b") {
		t.Fatalf("expected both aggregations in the fused CTE, got:\n%s", existing.Select.ToSQL())
	}
}
