package timeseries

// MultiplyMatching merge-joins two descending, date-sorted series and emits
// the product of the two values at every exactly matching date. Dates that
// exist in only one series are dropped: a day without both a quantity and a
// price (or rate) cannot produce a value point.
func MultiplyMatching(a, b []Point) []Point {
	var out []Point
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Date.Equal(b[j].Date):
			out = append(out, Point{
				Date:  a[i].Date,
				Value: a[i].Value.Mul(b[j].Value),
			})
			i++
			j++
		case a[i].Date.After(b[j].Date):
			i++
		default:
			j++
		}
	}
	return out
}
