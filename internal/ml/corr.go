package ml

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PruneCorrelated drops one member of every feature pair whose
// pairwise Pearson correlation exceeds the threshold, keeping the
// member more correlated (in absolute value) with the target. On an
// exact tie the first-listed feature wins, so the result is
// deterministic for a fixed column order.
//
// columns is column-major: columns[i] holds the values of names[i].
// The returned names preserve the input order.
func PruneCorrelated(names []string, columns [][]float64, target []float64, threshold float64) []string {
	n := len(names)
	dropped := make([]bool, n)

	targetCorr := make([]float64, n)
	for i := 0; i < n; i++ {
		targetCorr[i] = math.Abs(safeCorrelation(columns[i], target))
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if dropped[i] || dropped[j] {
				continue
			}
			if math.Abs(safeCorrelation(columns[i], columns[j])) <= threshold {
				continue
			}
			if targetCorr[i] < targetCorr[j] {
				dropped[i] = true
			} else {
				dropped[j] = true
			}
		}
	}

	kept := make([]string, 0, n)
	for i, name := range names {
		if !dropped[i] {
			kept = append(kept, name)
		}
	}
	return kept
}

// safeCorrelation treats constant columns (zero variance) as
// uncorrelated instead of NaN.
func safeCorrelation(x, y []float64) float64 {
	c := stat.Correlation(x, y, nil)
	if math.IsNaN(c) {
		return 0
	}
	return c
}

// TargetCorrelations reports |Pearson corr| of each column with the
// target, for the trainer's feature report.
func TargetCorrelations(names []string, columns [][]float64, target []float64) map[string]float64 {
	out := make(map[string]float64, len(names))
	for i, name := range names {
		out[name] = math.Abs(safeCorrelation(columns[i], target))
	}
	return out
}
