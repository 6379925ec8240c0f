package stats

// ============================================================================
// WEIGHTED PRIMITIVES
// ============================================================================

// WeightedObservation is one survey value carrying its respondent weight.
// INVARIANT: Weight >= 0
type WeightedObservation struct {
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// Summary is the weighted profile of one group's values.
type Summary struct {
	Count       int     `json:"count"`
	TotalWeight float64 `json:"total_weight"`
	Mean        float64 `json:"mean"`   // Σ(v·w)/Σw
	Median      float64 `json:"median"` // weighted median, midpoint tie rule
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}

// Observations zips parallel value and weight slices.
func Observations(values, weights []float64) []WeightedObservation {
	n := len(values)
	if len(weights) < n {
		n = len(weights)
	}
	out := make([]WeightedObservation, n)
	for i := 0; i < n; i++ {
		out[i] = WeightedObservation{Value: values[i], Weight: weights[i]}
	}
	return out
}

func split(obs []WeightedObservation) (values, weights []float64) {
	values = make([]float64, len(obs))
	weights = make([]float64, len(obs))
	for i, o := range obs {
		values[i] = o.Value
		weights[i] = o.Weight
	}
	return values, weights
}
