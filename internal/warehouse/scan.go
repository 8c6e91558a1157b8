package warehouse

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"neobase-ai/internal/catalog"
	"neobase-ai/internal/tabular"
)

// scanSQLRows consumes a database/sql result set produced by one of the
// sqlcompiler-generated statements (x_axis, zero or more group_by_N, then
// value) into a tabular.TabularDataResult. Shared by the ClickHouse and
// MySQL drivers, both of which reach the warehouse through gorm's
// *sql.Rows escape hatch.
func scanSQLRows(rows *sql.Rows) (*tabular.TabularDataResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	groupByNames := groupByColumnNames(cols)

	dest := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	var trows []tabular.Row
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row, err := rowFromColumns(cols, dest)
		if err != nil {
			return nil, err
		}
		trows = append(trows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tabular.New(groupByNames, trows), nil
}

func groupByColumnNames(cols []string) []string {
	var out []string
	for _, c := range cols {
		if strings.HasPrefix(c, "group_by_") {
			out = append(out, c)
		}
	}
	return out
}

func rowFromColumns(cols []string, vals []any) (tabular.Row, error) {
	var r tabular.Row
	for i, c := range cols {
		switch {
		case c == catalog.XAxisColumnAlias:
			r.XAxis = vals[i]
		case c == catalog.DataColumnAlias:
			v, err := toFloat64(vals[i])
			if err != nil {
				return tabular.Row{}, fmt.Errorf("warehouse: value column: %w", err)
			}
			r.Value = v
		case strings.HasPrefix(c, "group_by_"):
			r.GroupBy = append(r.GroupBy, vals[i])
		}
	}
	return r, nil
}

// toFloat64 widens whatever scalar type a driver handed back for the value
// column (int64, float64, []byte decimal text, string) into a float64; the
// chart pipeline only ever does float arithmetic on it.
func toFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case []byte:
		return strconv.ParseFloat(string(t), 64)
	case string:
		return strconv.ParseFloat(t, 64)
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}
