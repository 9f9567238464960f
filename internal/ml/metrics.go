package ml

import "math"

const mapeEpsilon = 1e-10

// RMSE is the root-mean-square error.
func RMSE(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// R2 is the coefficient of determination. A model no better than the
// mean scores 0; it can go negative.
func R2(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range actual {
		mean += v
	}
	mean /= float64(len(actual))

	ssRes, ssTot := 0.0, 0.0
	for i := range actual {
		d := actual[i] - predicted[i]
		ssRes += d * d
		t := actual[i] - mean
		ssTot += t * t
	}

	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// MAPE is the mean absolute percentage error, with the denominator
// floored so zero actuals cannot blow up the metric.
func MAPE(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		denom := math.Abs(actual[i])
		if denom < mapeEpsilon {
			denom = mapeEpsilon
		}
		sum += math.Abs(actual[i]-predicted[i]) / denom
	}
	return sum / float64(len(actual))
}
