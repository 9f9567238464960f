package ml

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// StackedConfig configures the stacking ensemble.
type StackedConfig struct {
	Folds  int
	Seed   int64
	Forest ForestConfig
	GBT    GBTConfig
}

// DefaultStackedConfig stacks the default forest and boosted ensemble
// with 5-fold out-of-fold meta training.
func DefaultStackedConfig() StackedConfig {
	return StackedConfig{
		Folds:  5,
		Seed:   42,
		Forest: DefaultForestConfig(),
		GBT:    DefaultGBTConfig(),
	}
}

// Stacked combines base ensembles through a linear meta model fit on
// out-of-fold base predictions. Weights[0] is the intercept.
type Stacked struct {
	Forest  *Forest
	GBT     *GBT
	Weights []float64
}

// FitStacked trains the stacking ensemble. Base models are fit per
// fold to produce out-of-fold predictions for the meta fit, then refit
// on the full data for inference.
func FitStacked(rows [][]float64, y []float64, cfg StackedConfig) *Stacked {
	n := len(rows)
	folds := cfg.Folds
	if folds > n {
		folds = n
	}
	if folds < 2 {
		folds = 2
	}

	oofForest := make([]float64, n)
	oofGBT := make([]float64, n)

	perm := rand.New(rand.NewSource(cfg.Seed)).Perm(n)
	for f := 0; f < folds; f++ {
		var trainIdx, holdIdx []int
		for pos, i := range perm {
			if pos%folds == f {
				holdIdx = append(holdIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}
		if len(trainIdx) == 0 || len(holdIdx) == 0 {
			continue
		}

		foldRows := make([][]float64, len(trainIdx))
		foldY := make([]float64, len(trainIdx))
		for pos, i := range trainIdx {
			foldRows[pos] = rows[i]
			foldY[pos] = y[i]
		}

		forest := FitForest(foldRows, foldY, cfg.Forest)
		gbt := FitGBT(foldRows, foldY, cfg.GBT)
		for _, i := range holdIdx {
			oofForest[i] = forest.Predict(rows[i])
			oofGBT[i] = gbt.Predict(rows[i])
		}
	}

	weights := solveMeta(oofForest, oofGBT, y)

	return &Stacked{
		Forest:  FitForest(rows, y, cfg.Forest),
		GBT:     FitGBT(rows, y, cfg.GBT),
		Weights: weights,
	}
}

// solveMeta solves the least-squares fit of y against
// [1, forest, gbt]. Falls back to an even blend if the system is
// degenerate.
func solveMeta(forestPred, gbtPred, y []float64) []float64 {
	n := len(y)
	design := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		design.Set(i, 1, forestPred[i])
		design.Set(i, 2, gbtPred[i])
	}

	var qr mat.QR
	qr.Factorize(design)

	var sol mat.Dense
	if err := qr.SolveTo(&sol, false, mat.NewDense(n, 1, y)); err != nil {
		return []float64{0, 0.5, 0.5}
	}

	return []float64{sol.At(0, 0), sol.At(1, 0), sol.At(2, 0)}
}

// Predict blends the refit base models with the meta weights.
func (s *Stacked) Predict(x []float64) float64 {
	if len(s.Weights) != 3 {
		return (s.Forest.Predict(x) + s.GBT.Predict(x)) / 2
	}
	return s.Weights[0] + s.Weights[1]*s.Forest.Predict(x) + s.Weights[2]*s.GBT.Predict(x)
}
