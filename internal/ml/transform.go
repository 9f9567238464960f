package ml

import (
	"math"
	"sort"
)

// QuantileTransformer maps each feature through its empirical CDF and
// then through the normal inverse CDF, producing approximately
// standard-normal marginals. Fit on the training split only; the
// fitted references are part of the persisted artifact.
type QuantileTransformer struct {
	References [][]float64 // per-column sorted training values
}

// FitQuantileTransformer learns the per-column reference distribution
// from row-major training data.
func FitQuantileTransformer(rows [][]float64) *QuantileTransformer {
	if len(rows) == 0 {
		return &QuantileTransformer{}
	}

	width := len(rows[0])
	refs := make([][]float64, width)
	for col := 0; col < width; col++ {
		values := make([]float64, len(rows))
		for i, row := range rows {
			values[i] = row[col]
		}
		sort.Float64s(values)
		refs[col] = values
	}

	return &QuantileTransformer{References: refs}
}

// Transform maps one row into normal-quantile space.
func (t *QuantileTransformer) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if i >= len(t.References) || len(t.References[i]) == 0 {
			out[i] = v
			continue
		}
		out[i] = normalQuantile(empiricalCDF(t.References[i], v))
	}
	return out
}

// TransformAll transforms row-major data.
func (t *QuantileTransformer) TransformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = t.Transform(row)
	}
	return out
}

// empiricalCDF returns the interpolated rank of v within the sorted
// reference values, in (0, 1).
func empiricalCDF(ref []float64, v float64) float64 {
	n := len(ref)
	if v <= ref[0] {
		return 0.5 / float64(n)
	}
	if v >= ref[n-1] {
		return 1 - 0.5/float64(n)
	}

	idx := sort.SearchFloat64s(ref, v)
	lo, hi := ref[idx-1], ref[idx]
	frac := 0.0
	if hi > lo {
		frac = (v - lo) / (hi - lo)
	}
	return (float64(idx-1) + 0.5 + frac) / float64(n)
}

// normalQuantile is the standard normal inverse CDF, clipped away from
// the tails so extreme ranks stay finite.
func normalQuantile(p float64) float64 {
	const clip = 1e-7
	if p < clip {
		p = clip
	}
	if p > 1-clip {
		p = 1 - clip
	}
	return math.Sqrt2 * math.Erfinv(2*p-1)
}
