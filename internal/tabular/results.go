package tabular

import "neobase-ai/internal/catalog"

// TabularDataResults is an ordered mapping from metric symbol ("x", "y", …)
// to TabularDataResult, as returned by a warehouse fetch gather.
type TabularDataResults struct {
	order   []string
	results map[string]*TabularDataResult
}

func NewResults() *TabularDataResults {
	return &TabularDataResults{results: map[string]*TabularDataResult{}}
}

func (r *TabularDataResults) Set(symbol string, result *TabularDataResult) {
	if _, ok := r.results[symbol]; !ok {
		r.order = append(r.order, symbol)
	}
	r.results[symbol] = result
}

func (r *TabularDataResults) Get(symbol string) (*TabularDataResult, bool) {
	v, ok := r.results[symbol]
	return v, ok
}

func (r *TabularDataResults) Symbols() []string {
	return append([]string(nil), r.order...)
}

// GroupByColumnsDistinctValuesCount returns the cardinality of the union of
// all group-by cell tuples across all fragments.
func (r *TabularDataResults) GroupByColumnsDistinctValuesCount() int {
	seen := map[string]bool{}
	for _, sym := range r.order {
		for _, t := range r.results[sym].GroupByValues() {
			seen[tupleKey(t)] = true
		}
	}
	return len(seen)
}

// MapXAxis applies f to every fragment's x-axis column.
func (r *TabularDataResults) MapXAxis(f func(any) any) *TabularDataResults {
	for _, sym := range r.order {
		r.results[sym] = r.results[sym].MapXAxis(f)
	}
	return r
}

// Filter keeps, in every fragment, only rows whose x-axis satisfies pred.
func (r *TabularDataResults) Filter(pred func(any) bool) *TabularDataResults {
	for _, sym := range r.order {
		r.results[sym] = r.results[sym].Filter(pred)
	}
	return r
}

// GroupByColumns returns the group-by column names shared by every
// fragment (all fragments of one chart query are compiled against the same
// group-by clause, so the first fragment's columns suffice).
func (r *TabularDataResults) GroupByColumns() []string {
	for _, sym := range r.order {
		return r.results[sym].GroupByColumns()
	}
	return nil
}

// GroupByValues returns the union of distinct group-by tuples across every
// fragment, in first-seen order.
func (r *TabularDataResults) GroupByValues() [][]any {
	seen := map[string]bool{}
	var out [][]any
	for _, sym := range r.order {
		for _, t := range r.results[sym].GroupByValues() {
			k := tupleKey(t)
			if !seen[k] {
				seen[k] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// FilterByGroupByValues keeps, in every fragment, only rows whose group-by
// tuple is in keys.
func (r *TabularDataResults) FilterByGroupByValues(keys [][]any) *TabularDataResults {
	out := NewResults()
	for _, sym := range r.order {
		out.Set(sym, r.results[sym].FilterByGroupByValues(keys))
	}
	return out
}

// GetMaxRows returns the largest fragment's row count.
func (r *TabularDataResults) GetMaxRows() int {
	max := 0
	for _, sym := range r.order {
		if n := len(r.results[sym].Rows); n > max {
			max = n
		}
	}
	return max
}

// RollupDataResult pairs a TabularDataResult with the x-axis and y-axis
// reducer names a KPI declared for it (spec §3's Rollup). "y-axis" here
// means the collapse across duplicate rows a group-by remap can introduce
// before the x-axis is remapped; "x-axis" means the final collapse to
// unique (x_axis, group_by…) keys once the x-axis itself has been remapped
// (e.g. truncated to a coarser grain, or zeroed out for totals).
type RollupDataResult struct {
	Result      *TabularDataResult
	RollupXAxis catalog.Reducer
	RollupYAxis catalog.Reducer
}

func NewRollupDataResult(result *TabularDataResult, rollup catalog.Rollup) RollupDataResult {
	return RollupDataResult{Result: result, RollupXAxis: rollup.RollupXAxis, RollupYAxis: rollup.RollupYAxis}
}

// Rollup applies the reference pipeline: remap group-by columns, collapse
// duplicates that remap can introduce (no-op without group-by columns),
// remap the x-axis, then collapse to unique (x_axis, group_by…) keys. A nil
// mapper is the identity.
func (rr RollupDataResult) Rollup(xAxisMapper func(any) any, groupByMapper func([]any) []any) *TabularDataResult {
	if xAxisMapper == nil {
		xAxisMapper = func(x any) any { return x }
	}
	if groupByMapper == nil {
		groupByMapper = func(g []any) []any { return g }
	}
	return rr.Result.
		MapGroupByColumns(groupByMapper).
		GroupByGroupByValues(rr.RollupYAxis).
		MapXAxis(xAxisMapper).
		GroupByXAxis(rr.RollupXAxis)
}

func (rr RollupDataResult) Filter(pred func(any) bool) RollupDataResult {
	return RollupDataResult{Result: rr.Result.Filter(pred), RollupXAxis: rr.RollupXAxis, RollupYAxis: rr.RollupYAxis}
}

func (rr RollupDataResult) FilterByGroupByValues(keys [][]any) RollupDataResult {
	return RollupDataResult{Result: rr.Result.FilterByGroupByValues(keys), RollupXAxis: rr.RollupXAxis, RollupYAxis: rr.RollupYAxis}
}

func (rr RollupDataResult) TrimZeros() RollupDataResult {
	return RollupDataResult{Result: rr.Result.TrimZeros(), RollupXAxis: rr.RollupXAxis, RollupYAxis: rr.RollupYAxis}
}

// RollupDataResults is an ordered symbol -> RollupDataResult map, mirroring
// TabularDataResults but carrying each fragment's rollup reducers too.
type RollupDataResults struct {
	order   []string
	results map[string]RollupDataResult
}

func NewRollupDataResults() *RollupDataResults {
	return &RollupDataResults{results: map[string]RollupDataResult{}}
}

func (r *RollupDataResults) Add(symbol string, result RollupDataResult) {
	if _, ok := r.results[symbol]; !ok {
		r.order = append(r.order, symbol)
	}
	r.results[symbol] = result
}

func (r *RollupDataResults) Get(symbol string) (RollupDataResult, bool) {
	v, ok := r.results[symbol]
	return v, ok
}

func (r *RollupDataResults) Symbols() []string {
	return append([]string(nil), r.order...)
}

func (r *RollupDataResults) TrimZeros() *RollupDataResults {
	for _, sym := range r.order {
		r.results[sym] = r.results[sym].TrimZeros()
	}
	return r
}

// GroupByValues returns the union of distinct group-by tuples across every
// fragment, in first-seen order.
func (r *RollupDataResults) GroupByValues() [][]any {
	seen := map[string]bool{}
	var out [][]any
	for _, sym := range r.order {
		for _, t := range r.results[sym].Result.GroupByValues() {
			k := tupleKey(t)
			if !seen[k] {
				seen[k] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// Rollup applies RollupDataResult.Rollup to every fragment, returning a
// symbol -> TabularDataResult map suitable as a formula interpreter value
// map.
func (r *RollupDataResults) Rollup(xAxisMapper func(any) any, groupByMapper func([]any) []any) map[string]any {
	out := make(map[string]any, len(r.order))
	for _, sym := range r.order {
		out[sym] = r.results[sym].Rollup(xAxisMapper, groupByMapper)
	}
	return out
}

func (r *RollupDataResults) Filter(pred func(any) bool) *RollupDataResults {
	for _, sym := range r.order {
		r.results[sym] = r.results[sym].Filter(pred)
	}
	return r
}

func (r *RollupDataResults) FilterByGroupByValues(keys [][]any) *RollupDataResults {
	for _, sym := range r.order {
		r.results[sym] = r.results[sym].FilterByGroupByValues(keys)
	}
	return r
}
