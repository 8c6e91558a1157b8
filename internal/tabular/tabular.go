// Package tabular implements the dense two-dimensional result type and its
// arithmetic/rollup/trim/top-N algebra (spec §4.1): every row is keyed by an
// x-axis value plus zero or more group-by values, with a single trailing
// value column.
package tabular

import (
	"fmt"
	"sort"
	"strings"

	"neobase-ai/internal/catalog"
)

// Row is one cell of a TabularDataResult.
type Row struct {
	XAxis   any
	GroupBy []any
	Value   float64
}

func (r Row) groupKey() string {
	parts := make([]string, len(r.GroupBy))
	for i, g := range r.GroupBy {
		parts[i] = fmt.Sprintf("%v", g)
	}
	return strings.Join(parts, "\x1f")
}

func (r Row) mergeKey() string {
	return fmt.Sprintf("%v", r.XAxis) + "\x1e" + r.groupKey()
}

// TabularDataResult is an in-memory table: x-axis column, zero or more
// group-by columns, then the value column.
type TabularDataResult struct {
	GroupByColumnNames []string
	Rows               []Row
}

func New(groupByColumns []string, rows []Row) *TabularDataResult {
	return &TabularDataResult{GroupByColumnNames: append([]string(nil), groupByColumns...), Rows: rows}
}

func Empty(groupByColumns []string) *TabularDataResult {
	return New(groupByColumns, nil)
}

func (t *TabularDataResult) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

func (t *TabularDataResult) clone() *TabularDataResult {
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = Row{XAxis: r.XAxis, GroupBy: append([]any(nil), r.GroupBy...), Value: r.Value}
	}
	return New(t.GroupByColumnNames, rows)
}

// GroupByColumns returns the ordered list of group-by column names.
func (t *TabularDataResult) GroupByColumns() []string {
	return append([]string(nil), t.GroupByColumnNames...)
}

// --- scalar arithmetic ---

// MapValue applies f to every row's value column, preserving x-axis and
// group-by cells.
func (t *TabularDataResult) MapValue(f func(float64) float64) *TabularDataResult {
	out := t.clone()
	for i := range out.Rows {
		out.Rows[i].Value = f(out.Rows[i].Value)
	}
	return out
}

func (t *TabularDataResult) AddScalar(a float64) *TabularDataResult { return t.MapValue(func(v float64) float64 { return v + a }) }
func (t *TabularDataResult) SubScalar(a float64) *TabularDataResult { return t.MapValue(func(v float64) float64 { return v - a }) }
func (t *TabularDataResult) MulScalar(a float64) *TabularDataResult { return t.MapValue(func(v float64) float64 { return v * a }) }

// DivScalar divides every value by a; division by zero yields zero (spec's
// safe-division policy, §4.1/§9 — a product decision, not a bug).
func (t *TabularDataResult) DivScalar(a float64) *TabularDataResult {
	return t.MapValue(func(v float64) float64 {
		if a == 0 {
			return 0
		}
		return v / a
	})
}

// ScalarSubFrom computes a - T (used for commutativity checks and formula
// evaluation where the scalar appears on the left of a non-commutative op).
func (t *TabularDataResult) ScalarSubFrom(a float64) *TabularDataResult {
	return t.MapValue(func(v float64) float64 { return a - v })
}

// ScalarDivBy computes a / T, applying the safe-division policy per cell.
func (t *TabularDataResult) ScalarDivBy(a float64) *TabularDataResult {
	return t.MapValue(func(v float64) float64 {
		if v == 0 {
			return 0
		}
		return a / v
	})
}

// Broadcast returns a copy of t with every row's value replaced by v —
// used when a formula's top-level result is a bare scalar and must be
// spread across the identity table (spec §4.5).
func (t *TabularDataResult) Broadcast(v float64) *TabularDataResult {
	return t.MapValue(func(float64) float64 { return v })
}

// --- table arithmetic ---

func (t *TabularDataResult) index() map[string]Row {
	idx := make(map[string]Row, len(t.Rows))
	for _, r := range t.Rows {
		idx[r.mergeKey()] = r
	}
	return idx
}

// binOp inner-joins t and other on the merge key and combines value columns
// with combine. Rows absent from either side are dropped. If either side is
// empty, the empty side is returned (short-circuit per spec).
func (t *TabularDataResult) binOp(other *TabularDataResult, combine func(a, b float64) float64) *TabularDataResult {
	if t.IsEmpty() {
		return t
	}
	if other.IsEmpty() {
		return other
	}
	idx := other.index()
	var rows []Row
	for _, r := range t.Rows {
		if o, ok := idx[r.mergeKey()]; ok {
			rows = append(rows, Row{XAxis: r.XAxis, GroupBy: r.GroupBy, Value: combine(r.Value, o.Value)})
		}
	}
	return New(t.GroupByColumnNames, rows)
}

func (t *TabularDataResult) AddTable(other *TabularDataResult) *TabularDataResult {
	return t.binOp(other, func(a, b float64) float64 { return a + b })
}

func (t *TabularDataResult) SubTable(other *TabularDataResult) *TabularDataResult {
	return t.binOp(other, func(a, b float64) float64 { return a - b })
}

func (t *TabularDataResult) MulTable(other *TabularDataResult) *TabularDataResult {
	return t.binOp(other, func(a, b float64) float64 { return a * b })
}

func (t *TabularDataResult) DivTable(other *TabularDataResult) *TabularDataResult {
	return t.binOp(other, func(a, b float64) float64 {
		if b == 0 {
			return 0
		}
		return a / b
	})
}

// MergeValues left-outer-joins t against other on the merge key, preferring
// other's value when present. This is how an identity table is filled with
// fragment data.
func (t *TabularDataResult) MergeValues(other *TabularDataResult) *TabularDataResult {
	idx := other.index()
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		v := r.Value
		if o, ok := idx[r.mergeKey()]; ok {
			v = o.Value
		}
		rows[i] = Row{XAxis: r.XAxis, GroupBy: r.GroupBy, Value: v}
	}
	return New(t.GroupByColumnNames, rows)
}

// --- mapping ---

func (t *TabularDataResult) MapXAxis(f func(any) any) *TabularDataResult {
	out := t.clone()
	for i := range out.Rows {
		out.Rows[i].XAxis = f(out.Rows[i].XAxis)
	}
	return out
}

func (t *TabularDataResult) MapGroupByColumns(f func([]any) []any) *TabularDataResult {
	out := t.clone()
	for i := range out.Rows {
		out.Rows[i].GroupBy = f(out.Rows[i].GroupBy)
	}
	return out
}

// --- rollups ---

// Reduce applies a catalog.Reducer to a slice of values.
func Reduce(reducer catalog.Reducer, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	switch reducer {
	case catalog.ReducerCount:
		return float64(len(values))
	case catalog.ReducerAvg:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	default: // sum
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum
	}
}

// GroupByXAxis partitions rows by the full merge key (x_axis, group-by
// tuple) and reduces the value column within each partition — this is the
// operation that makes rows uniquely keyed by (x_axis, group_by…).
func (t *TabularDataResult) GroupByXAxis(reducer catalog.Reducer) *TabularDataResult {
	type bucket struct {
		xAxis   any
		groupBy []any
		values  []float64
	}
	order := []string{}
	buckets := map[string]*bucket{}
	for _, r := range t.Rows {
		k := r.mergeKey()
		b, ok := buckets[k]
		if !ok {
			b = &bucket{xAxis: r.XAxis, groupBy: r.GroupBy}
			buckets[k] = b
			order = append(order, k)
		}
		b.values = append(b.values, r.Value)
	}
	rows := make([]Row, 0, len(order))
	for _, k := range order {
		b := buckets[k]
		rows = append(rows, Row{XAxis: b.xAxis, GroupBy: b.groupBy, Value: Reduce(reducer, b.values)})
	}
	return New(t.GroupByColumnNames, rows)
}

// GroupByGroupByValues partitions rows by the full merge key, exactly like
// GroupByXAxis, but is a no-op when there are no group-by columns. It
// exists as a separate operation (rather than an unconditional alias)
// because the rollup pipeline applies it before an x-axis remap and
// GroupByXAxis after — each collapsing duplicates the other's step can
// introduce — and the pre-remap pass only matters when a group-by mapper
// could have coalesced distinct tuples.
func (t *TabularDataResult) GroupByGroupByValues(reducer catalog.Reducer) *TabularDataResult {
	if len(t.GroupByColumnNames) == 0 {
		return t
	}
	return t.GroupByXAxis(reducer)
}

// --- filtering ---

func (t *TabularDataResult) Filter(pred func(any) bool) *TabularDataResult {
	var rows []Row
	for _, r := range t.Rows {
		if pred(r.XAxis) {
			rows = append(rows, r)
		}
	}
	return New(t.GroupByColumnNames, rows)
}

// FilterByGroupByValues keeps rows whose group-by tuple is in keys; surviving
// rows are sorted first by x-axis ascending, then by the tuple's position in
// keys.
func (t *TabularDataResult) FilterByGroupByValues(keys [][]any) *TabularDataResult {
	pos := map[string]int{}
	for i, k := range keys {
		pos[tupleKey(k)] = i
	}
	var rows []Row
	for _, r := range t.Rows {
		if _, ok := pos[r.groupKey()]; ok {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if a, ok := rows[i].XAxis.(int); ok {
			if b, ok := rows[j].XAxis.(int); ok && a != b {
				return a < b
			}
		}
		xi, xj := fmt.Sprintf("%v", rows[i].XAxis), fmt.Sprintf("%v", rows[j].XAxis)
		if xi != xj {
			return xi < xj
		}
		return pos[rows[i].groupKey()] < pos[rows[j].groupKey()]
	})
	return New(t.GroupByColumnNames, rows)
}

func tupleKey(tuple []any) string {
	parts := make([]string, len(tuple))
	for i, v := range tuple {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, "\x1f")
}

// TrimZeros drops, within each group-by partition (sorted by x-axis), rows
// strictly before the first and strictly after the last nonzero value. A
// partition that is entirely zero is dropped wholesale. Interior zero runs
// are preserved. Idempotent.
func (t *TabularDataResult) TrimZeros() *TabularDataResult {
	partitions := map[string][]Row{}
	var order []string
	for _, r := range t.Rows {
		k := r.groupKey()
		if _, ok := partitions[k]; !ok {
			order = append(order, k)
		}
		partitions[k] = append(partitions[k], r)
	}
	var rows []Row
	for _, k := range order {
		part := partitions[k]
		sort.SliceStable(part, func(i, j int) bool {
			if a, ok := part[i].XAxis.(int); ok {
				if b, ok := part[j].XAxis.(int); ok {
					return a < b
				}
			}
			return fmt.Sprintf("%v", part[i].XAxis) < fmt.Sprintf("%v", part[j].XAxis)
		})
		first, last := -1, -1
		for i, r := range part {
			if r.Value != 0 {
				if first == -1 {
					first = i
				}
				last = i
			}
		}
		if first == -1 {
			continue
		}
		rows = append(rows, part[first:last+1]...)
	}
	return New(t.GroupByColumnNames, rows)
}

// GetTopNValues sorts by value descending and takes the first n rows.
func (t *TabularDataResult) GetTopNValues(n int) *TabularDataResult {
	rows := append([]Row(nil), t.Rows...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })
	if n < len(rows) {
		rows = rows[:n]
	}
	return New(t.GroupByColumnNames, rows)
}

// GroupByValues returns the distinct group-by tuples present, in first-seen
// order.
func (t *TabularDataResult) GroupByValues() [][]any {
	seen := map[string]bool{}
	var out [][]any
	for _, r := range t.Rows {
		k := r.groupKey()
		if !seen[k] {
			seen[k] = true
			out = append(out, r.GroupBy)
		}
	}
	return out
}

// --- identity construction ---

// sortGroupByTuples orders tuples whose entries are all non-null first
// (lexicographically), then tuples containing a null.
func sortGroupByTuples(values [][]any) []string {
	type entry struct {
		key     string
		hasNull bool
	}
	entries := make([]entry, len(values))
	for i, v := range values {
		hasNull := false
		for _, cell := range v {
			if cell == nil {
				hasNull = true
				break
			}
		}
		entries[i] = entry{key: tupleKey(v), hasNull: hasNull}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].hasNull != entries[j].hasNull {
			return !entries[i].hasNull
		}
		return entries[i].key < entries[j].key
	})
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.key
	}
	return out
}

// FromDateInterval returns an identity table carrying every (x_axis,
// group_by_tuple) pair at value zero, x-axis drawn from
// interval.GenerateAllDates(grain).
func FromDateInterval(interval catalog.DatetimeInterval, grain catalog.TimeGrain, groupByColumns []string, groupByValues [][]any) *TabularDataResult {
	dates := interval.GenerateAllDates(grain)
	return buildIdentity(toAnySlice(dates), groupByColumns, groupByValues)
}

// FromCohortDays returns an identity table whose x-axis is [0, days-1].
func FromCohortDays(days int, groupByColumns []string, groupByValues [][]any) *TabularDataResult {
	xs := make([]any, days)
	for i := 0; i < days; i++ {
		xs[i] = i
	}
	return buildIdentity(xs, groupByColumns, groupByValues)
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func buildIdentity(xAxisValues []any, groupByColumns []string, groupByValues [][]any) *TabularDataResult {
	tuples := groupByValues
	if len(groupByColumns) == 0 {
		tuples = [][]any{{}}
	} else if len(tuples) == 0 {
		tuples = [][]any{make([]any, len(groupByColumns))}
	}
	byKey := map[string][]any{}
	for _, t := range tuples {
		byKey[tupleKey(t)] = t
	}
	orderedKeys := sortGroupByTuples(tuples)

	var rows []Row
	for _, x := range xAxisValues {
		for _, k := range orderedKeys {
			rows = append(rows, Row{XAxis: x, GroupBy: byKey[k], Value: 0})
		}
	}
	return New(groupByColumns, rows)
}
