package analytics

import (
	"math"
	"sort"

	"github.com/wonny/salesdesk/backend/internal/contracts"
)

// Describe computes count, mean, sample std, min, quartiles and max.
// Quartiles use linear interpolation between closest ranks. Undefined
// statistics (no values; std of a single value) are left nil.
func Describe(vals []float64) *contracts.DescriptiveStats {
	stats := &contracts.DescriptiveStats{Count: len(vals)}
	if len(vals) == 0 {
		return stats
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	total := 0.0
	for _, v := range sorted {
		total += v
	}
	m := total / float64(len(sorted))
	stats.Mean = ptr(m)

	if len(sorted) > 1 {
		ss := 0.0
		for _, v := range sorted {
			ss += (v - m) * (v - m)
		}
		stats.Std = ptr(math.Sqrt(ss / float64(len(sorted)-1)))
	}

	stats.Min = ptr(sorted[0])
	stats.P25 = ptr(quantile(sorted, 0.25))
	stats.P50 = ptr(quantile(sorted, 0.50))
	stats.P75 = ptr(quantile(sorted, 0.75))
	stats.Max = ptr(sorted[len(sorted)-1])

	return stats
}

// quantile expects sorted, non-empty input
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func ptr(v float64) *float64 {
	return &v
}
