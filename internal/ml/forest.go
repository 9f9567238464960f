package ml

import (
	"math/rand"
	"sync"
)

// ForestConfig configures random forest fitting.
type ForestConfig struct {
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	Seed            int64
}

// DefaultForestConfig mirrors the tuned parameters of the reference
// training pipeline.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		NumTrees:        500,
		MaxDepth:        8,
		MinSamplesSplit: 5,
		Seed:            42,
	}
}

// Forest is a bagged ensemble of regression trees; the prediction is
// the mean of the trees.
type Forest struct {
	Trees []*Tree
}

// FitForest fits the forest on row-major data. Each tree draws its own
// bootstrap sample from a generator seeded with Seed plus the tree
// index, so fitting is deterministic even though trees are grown in
// parallel.
func FitForest(rows [][]float64, y []float64, cfg ForestConfig) *Forest {
	n := len(rows)
	trees := make([]*Tree, cfg.NumTrees)
	params := treeParams{maxDepth: cfg.MaxDepth, minSamplesSplit: cfg.MinSamplesSplit}

	var wg sync.WaitGroup
	for t := 0; t < cfg.NumTrees; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(cfg.Seed + int64(t)))
			indices := make([]int, n)
			for i := range indices {
				indices[i] = rng.Intn(n)
			}
			trees[t] = fitTree(rows, y, indices, params)
		}(t)
	}
	wg.Wait()

	return &Forest{Trees: trees}
}

// Predict returns the mean prediction over all trees.
func (f *Forest) Predict(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, tree := range f.Trees {
		sum += tree.Predict(x)
	}
	return sum / float64(len(f.Trees))
}
