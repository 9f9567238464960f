package trainer

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hacklytics/viralcast/internal/dataset"
	"github.com/hacklytics/viralcast/internal/features"
	"github.com/hacklytics/viralcast/internal/ml"
	"github.com/hacklytics/viralcast/internal/models"
)

const (
	splitSeed    = 42
	testFraction = 0.2
)

// Options control one training run.
type Options struct {
	Family        string // forest, gbt or stacked
	CorrThreshold float64
	PruneFeatures bool
}

// Train fits a view-count model on joined examples and returns the
// persisted-ready artifact. The target is log1p(views); evaluation is
// reported back in view scale.
func Train(examples []dataset.Example, opts Options) (*Artifact, error) {
	if len(examples) < 10 {
		return nil, fmt.Errorf("need at least 10 joined examples to train, have %d", len(examples))
	}

	log := logrus.WithField("component", "trainer")

	target := make([]float64, len(examples))
	for i, ex := range examples {
		target[i] = math.Log1p(ex.Views)
	}

	columns := features.CandidateColumns()
	colMajor := make([][]float64, len(columns))
	for c, name := range columns {
		values := make([]float64, len(examples))
		for i, ex := range examples {
			values[i] = ex.Vector[name]
		}
		colMajor[c] = values
	}

	reportCorrelations(log, columns, colMajor, target)

	if opts.PruneFeatures {
		kept := ml.PruneCorrelated(columns, colMajor, target, opts.CorrThreshold)
		log.WithFields(logrus.Fields{
			"candidates": len(columns),
			"kept":       len(kept),
			"threshold":  opts.CorrThreshold,
		}).Info("Correlation pruning complete")
		columns = kept
	}

	rows := make([][]float64, len(examples))
	for i, ex := range examples {
		row := make([]float64, len(columns))
		for c, name := range columns {
			row[c] = ex.Vector[name]
		}
		rows[i] = row
	}

	trainIdx, testIdx := split(len(rows))

	trainRows := subsetRows(rows, trainIdx)
	trainY := subsetVals(target, trainIdx)
	testRows := subsetRows(rows, testIdx)
	testY := subsetVals(target, testIdx)

	transformer := ml.FitQuantileTransformer(trainRows)
	trainRows = transformer.TransformAll(trainRows)
	testRows = transformer.TransformAll(testRows)

	model, err := fitFamily(opts.Family, trainRows, trainY)
	if err != nil {
		return nil, err
	}

	eval := evaluate(model, testRows, testY)
	eval.TrainN = len(trainIdx)
	eval.TestN = len(testIdx)
	eval.Features = len(columns)

	log.WithFields(logrus.Fields{
		"family": opts.Family,
		"rmse":   eval.RMSE,
		"r2":     eval.R2,
		"mape":   eval.MAPE,
	}).Info("Training complete")

	return &Artifact{
		Columns:     columns,
		Transformer: transformer,
		Model:       model,
		Family:      opts.Family,
		TrainedAt:   time.Now().UTC(),
		Eval:        eval,
	}, nil
}

func fitFamily(family string, rows [][]float64, y []float64) (ml.Model, error) {
	switch family {
	case "forest":
		return ml.FitForest(rows, y, ml.DefaultForestConfig()), nil
	case "gbt":
		return ml.FitGBT(rows, y, ml.DefaultGBTConfig()), nil
	case "stacked":
		return ml.FitStacked(rows, y, ml.DefaultStackedConfig()), nil
	default:
		return nil, fmt.Errorf("unknown model family %q (want forest, gbt or stacked)", family)
	}
}

// split shuffles indices with a fixed seed and holds out the first 20%
// of the shuffled permutation.
func split(n int) (train, test []int) {
	perm := rand.New(rand.NewSource(splitSeed)).Perm(n)
	testN := int(float64(n) * testFraction)
	if testN < 1 {
		testN = 1
	}
	return perm[testN:], perm[:testN]
}

// evaluate scores the model on the held-out split in original view
// scale: predictions and targets go through expm1 before the metrics.
func evaluate(model ml.Model, rows [][]float64, y []float64) models.EvalReport {
	actual := make([]float64, len(rows))
	predicted := make([]float64, len(rows))
	for i, row := range rows {
		actual[i] = math.Expm1(y[i])
		predicted[i] = math.Expm1(model.Predict(row))
	}
	return models.EvalReport{
		RMSE: ml.RMSE(actual, predicted),
		R2:   ml.R2(actual, predicted),
		MAPE: ml.MAPE(actual, predicted),
	}
}

// reportCorrelations logs each candidate's |corr| with the log target,
// strongest first.
func reportCorrelations(log *logrus.Entry, columns []string, colMajor [][]float64, target []float64) {
	corr := ml.TargetCorrelations(columns, colMajor, target)

	ordered := make([]string, len(columns))
	copy(ordered, columns)
	sort.SliceStable(ordered, func(a, b int) bool {
		return corr[ordered[a]] > corr[ordered[b]]
	})

	for _, name := range ordered {
		log.WithFields(logrus.Fields{
			"feature":  name,
			"abs_corr": fmt.Sprintf("%.4f", corr[name]),
		}).Debug("Feature correlation with log views")
	}
}

func subsetRows(rows [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for pos, i := range idx {
		out[pos] = rows[i]
	}
	return out
}

func subsetVals(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for pos, i := range idx {
		out[pos] = vals[i]
	}
	return out
}
