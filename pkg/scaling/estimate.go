package scaling

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Estimate is the aggregate scale factor derived from all measured
// pairs. It is recomputed on demand, never stored.
type Estimate struct {
	Factor float64 // mean of per-pair real/model ratios
	StdDev float64 // sample standard deviation of the ratios
	Pairs  int     // number of contributing pairs
}

// Valid reports whether at least one pair contributed
func (e Estimate) Valid() bool {
	return e.Pairs > 0
}

// EstimateScale aggregates per-pair scale ratios. Only measured pairs
// with positive, finite model and real distances contribute; degenerate
// pairs are skipped silently rather than poisoning the aggregate. With
// no qualifying pairs the zero Estimate is returned, and with a single
// pair the standard deviation is 0.
func EstimateScale(pairs []*Pair) Estimate {
	var ratios []float64
	for _, p := range pairs {
		if p.State() != StateMeasured {
			continue
		}
		if p.ModelDistance <= 0 || p.RealDistance <= 0 {
			continue
		}
		ratio := p.RealDistance / p.ModelDistance
		if math.IsInf(ratio, 0) || math.IsNaN(ratio) {
			continue
		}
		ratios = append(ratios, ratio)
	}

	if len(ratios) == 0 {
		return Estimate{}
	}

	est := Estimate{
		Factor: stat.Mean(ratios, nil),
		Pairs:  len(ratios),
	}
	if len(ratios) > 1 {
		est.StdDev = stat.StdDev(ratios, nil)
	}
	return est
}

// Estimate aggregates the store's measured pairs into a scale estimate
func (s *Store) Estimate() Estimate {
	return EstimateScale(s.pairs)
}
