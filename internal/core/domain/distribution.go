package domain

// DistributionEntry is one category of a distribution.
type DistributionEntry struct {
	Category    string `json:"category"`
	Count       int    `json:"count"`
	Percentage  int    `json:"percentage"`
	Description string `json:"description"`
}

// Distribution groups devices by one dimension, in first-occurrence order.
// The counts always sum to the number of devices it was built from.
type Distribution []DistributionEntry

// Total returns the sum of all counts.
func (d Distribution) Total() int {
	total := 0
	for _, e := range d {
		total += e.Count
	}
	return total
}

// Categories returns the category keys in order.
func (d Distribution) Categories() []string {
	out := make([]string, len(d))
	for i, e := range d {
		out[i] = e.Category
	}
	return out
}

// ChartProjection is a chart-ready view of a Distribution.
// Labels, Values and Colors are parallel and follow the distribution order.
type ChartProjection struct {
	Labels       []string `json:"labels"`
	Values       []int    `json:"values"`
	Colors       []string `json:"colors"`
	BorderColors []string `json:"borderColors"`
	BorderWidth  int      `json:"borderWidth"`
}

// Len returns the number of points in the projection.
func (c ChartProjection) Len() int {
	return len(c.Labels)
}
