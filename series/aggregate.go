package series

// Sum adds up the values present in m.
func Sum(m Merged) float64 {
	var total float64
	for _, v := range m.Values {
		if v != nil {
			total += *v
		}
	}
	return total
}

// Totals collapses every merged row into a single datum holding the row's Sum.
func Totals(ms []Merged) []Datum {
	totals := make([]Datum, len(ms))
	for i, m := range ms {
		totals[i] = Datum{Position: m.Position, Value: Sum(m)}
	}
	return totals
}
