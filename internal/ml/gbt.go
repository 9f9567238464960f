package ml

import "math/rand"

// GBTConfig configures gradient boosted tree fitting.
type GBTConfig struct {
	Rounds          int
	LearningRate    float64
	MaxDepth        int
	MinSamplesSplit int
	Subsample       float64
	Seed            int64
}

// DefaultGBTConfig mirrors the tuned parameters of the reference
// training pipeline.
func DefaultGBTConfig() GBTConfig {
	return GBTConfig{
		Rounds:          500,
		LearningRate:    0.01,
		MaxDepth:        6,
		MinSamplesSplit: 5,
		Subsample:       0.8,
		Seed:            42,
	}
}

// GBT is a gradient boosted ensemble for squared loss: each round fits
// a regression tree to the residuals of the running prediction.
type GBT struct {
	Base         float64
	LearningRate float64
	Trees        []*Tree
}

// FitGBT fits the ensemble on row-major data. Each round trains on a
// random row subsample drawn without replacement.
func FitGBT(rows [][]float64, y []float64, cfg GBTConfig) *GBT {
	n := len(rows)
	base := 0.0
	for _, v := range y {
		base += v
	}
	if n > 0 {
		base /= float64(n)
	}

	model := &GBT{Base: base, LearningRate: cfg.LearningRate}
	if n == 0 {
		return model
	}

	current := make([]float64, n)
	for i := range current {
		current[i] = base
	}
	residual := make([]float64, n)
	params := treeParams{maxDepth: cfg.MaxDepth, minSamplesSplit: cfg.MinSamplesSplit}
	rng := rand.New(rand.NewSource(cfg.Seed))

	sampleSize := int(cfg.Subsample * float64(n))
	if sampleSize < 1 || sampleSize > n {
		sampleSize = n
	}

	for round := 0; round < cfg.Rounds; round++ {
		for i := range residual {
			residual[i] = y[i] - current[i]
		}

		indices := rng.Perm(n)[:sampleSize]
		tree := fitTree(rows, residual, indices, params)
		model.Trees = append(model.Trees, tree)

		for i, row := range rows {
			current[i] += cfg.LearningRate * tree.Predict(row)
		}
	}

	return model
}

// Predict sums the base value and the shrunken tree contributions.
func (g *GBT) Predict(x []float64) float64 {
	out := g.Base
	for _, tree := range g.Trees {
		out += g.LearningRate * tree.Predict(x)
	}
	return out
}
