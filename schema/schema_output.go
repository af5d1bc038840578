package schema

// ColumnTotals sums every column of the table.
func (t MergedTable) ColumnTotals() []float64 {
	totals := make([]float64, len(t.Columns))
	for _, r := range t.Rows {
		for i, v := range r.Values {
			totals[i] += v
		}
	}
	return totals
}

// HistoryTotals sums the numeric columns of long rows by project, in first
// appearance order.
func HistoryTotals(rows []HistoryRow) ([]string, map[string][]float64) {
	var order []string
	totals := make(map[string][]float64)
	for _, r := range rows {
		sums, ok := totals[r.Project]
		if !ok {
			sums = make([]float64, len(ValueColumns))
			order = append(order, r.Project)
		}
		for i, v := range r.Values() {
			if v != nil {
				sums[i] += *v
			}
		}
		totals[r.Project] = sums
	}
	return order, totals
}
