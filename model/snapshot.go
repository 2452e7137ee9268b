package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/uyouii/fanchart/common"
	"gonum.org/v1/gonum/floats"
)

// StatisticsSnapshot holds the terminal portfolio value percentiles of one
// simulation run. It is produced upstream and never mutated here.
type StatisticsSnapshot struct {
	P5  float64 `json:"P5"`
	P25 float64 `json:"P25"`
	P50 float64 `json:"P50"`
	P75 float64 `json:"P75"`
	P95 float64 `json:"P95"`
}

// Percentile pairs a display label with the snapshot field it reads.
type Percentile struct {
	Label string
	Value func(s StatisticsSnapshot) float64
}

// Percentiles is the single source for label/value ordering.
var Percentiles = []Percentile{
	{Label: "p5", Value: func(s StatisticsSnapshot) float64 { return s.P5 }},
	{Label: "p25", Value: func(s StatisticsSnapshot) float64 { return s.P25 }},
	{Label: "p50", Value: func(s StatisticsSnapshot) float64 { return s.P50 }},
	{Label: "p75", Value: func(s StatisticsSnapshot) float64 { return s.P75 }},
	{Label: "p95", Value: func(s StatisticsSnapshot) float64 { return s.P95 }},
}

func PercentileLabels() []string {
	labels := make([]string, 0, len(Percentiles))
	for _, p := range Percentiles {
		labels = append(labels, p.Label)
	}
	return labels
}

func (s StatisticsSnapshot) Values() []float64 {
	values := make([]float64, 0, len(Percentiles))
	for _, p := range Percentiles {
		values = append(values, p.Value(s))
	}
	return values
}

func (s StatisticsSnapshot) Monotonic() bool {
	return sort.Float64sAreSorted(s.Values())
}

// Validate reports values that cannot be a terminal portfolio value.
// Ordering is not checked, see Monotonic.
func (s StatisticsSnapshot) Validate() error {
	values := s.Values()
	if floats.HasNaN(values) {
		return fmt.Errorf("snapshot has NaN percentile: %w", common.ErrorInvalidValue)
	}
	for i, v := range values {
		if math.IsInf(v, 0) {
			return fmt.Errorf("%s is infinite: %w", Percentiles[i].Label, common.ErrorInvalidValue)
		}
		if v < 0 {
			return fmt.Errorf("%s is negative (%v): %w", Percentiles[i].Label, v, common.ErrorInvalidValue)
		}
	}
	return nil
}
