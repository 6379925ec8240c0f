package stats

import (
	"fmt"
	"math"
	"sort"

	"goimpact/domain/core"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TotalWeight sums the weights after checking each is finite and not negative.
func TotalWeight(obs []WeightedObservation) (float64, error) {
	_, weights := split(obs)
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return 0, fmt.Errorf("%w: observation %d has weight %v", core.ErrNegativeWeight, i, w)
		}
	}
	return floats.Sum(weights), nil
}

// WeightedMean returns Σ(value·weight) / Σ(weight).
// Zero total weight is an error, never NaN.
func WeightedMean(obs []WeightedObservation) (float64, error) {
	total, err := TotalWeight(obs)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, core.NewDivisionByZeroError("weighted mean")
	}
	values, weights := split(obs)
	return stat.Mean(values, weights), nil
}

// WeightedMedian sorts by value (stable, so equal values keep insertion order) and walks the
// cumulative weight up to half the total. A single observation heavier than half the total
// is the median outright. Landing exactly on the midpoint averages that value with the next.
// The midpoint is taken from the same sorted running sum the walk compares against.
func WeightedMedian(obs []WeightedObservation) (float64, error) {
	total, err := TotalWeight(obs)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, core.NewDivisionByZeroError("weighted median")
	}

	sorted := make([]WeightedObservation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value < sorted[j].Value
	})

	cumulative := make([]float64, len(sorted))
	running := 0.0
	for i, o := range sorted {
		running += o.Weight
		cumulative[i] = running
	}
	midpoint := 0.5 * cumulative[len(cumulative)-1]

	for _, o := range sorted {
		if o.Weight > midpoint {
			return o.Value, nil
		}
	}

	for i, c := range cumulative {
		if c == midpoint {
			if i+1 < len(sorted) {
				return (sorted[i].Value + sorted[i+1].Value) / 2, nil
			}
			return sorted[i].Value, nil
		}
		if c > midpoint {
			return sorted[i].Value, nil
		}
	}

	return sorted[len(sorted)-1].Value, nil
}

// Summarize computes the weighted mean and median plus the unweighted range.
func Summarize(obs []WeightedObservation) (Summary, error) {
	mean, err := WeightedMean(obs)
	if err != nil {
		return Summary{}, err
	}
	median, err := WeightedMedian(obs)
	if err != nil {
		return Summary{}, err
	}
	total, _ := TotalWeight(obs)

	values, _ := split(obs)
	lo, _ := mstats.Min(values)
	hi, _ := mstats.Max(values)

	return Summary{
		Count:       len(obs),
		TotalWeight: total,
		Mean:        mean,
		Median:      median,
		Min:         lo,
		Max:         hi,
	}, nil
}

// WeightedShare returns the weight of observations matching keep over the total weight.
func WeightedShare(obs []WeightedObservation, keep func(WeightedObservation) bool) (float64, error) {
	total, err := TotalWeight(obs)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, core.NewDivisionByZeroError("weighted share")
	}
	part := 0.0
	for _, o := range obs {
		if keep(o) {
			part += o.Weight
		}
	}
	return part / total, nil
}
