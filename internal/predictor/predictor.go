package predictor

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/hacklytics/viralcast/internal/features"
	"github.com/hacklytics/viralcast/internal/models"
	"github.com/hacklytics/viralcast/internal/trainer"
)

// Predictor scores analyzed videos with a trained artifact. It holds
// only immutable fitted state and is safe for concurrent use.
type Predictor struct {
	artifact *trainer.Artifact
	log      *logrus.Entry
}

// New wraps a loaded artifact.
func New(artifact *trainer.Artifact) *Predictor {
	return &Predictor{
		artifact: artifact,
		log:      logrus.WithField("component", "predictor"),
	}
}

// Load reads the artifact from disk and wraps it.
func Load(path string) (*Predictor, error) {
	artifact, err := trainer.LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"path":     path,
		"family":   artifact.Family,
		"features": len(artifact.Columns),
	}).Info("Model artifact loaded")
	return New(artifact), nil
}

// Eval exposes the held-out metrics stored with the artifact.
func (p *Predictor) Eval() models.EvalReport {
	return p.artifact.Eval
}

// Predict scores one analyzed video. The feature vector is assembled
// in the artifact's stored column order, quantile-transformed with the
// fitted references, and the model output mapped back from log scale.
func (p *Predictor) Predict(rec *models.VideoFeatureRecord, length float64) (*models.Prediction, error) {
	vector := features.Engineer(rec, length)

	row := make([]float64, len(p.artifact.Columns))
	for i, name := range p.artifact.Columns {
		value, ok := vector[name]
		if !ok {
			return nil, &models.SchemaMismatchError{Column: name}
		}
		row[i] = value
	}

	logViews := p.artifact.Model.Predict(p.artifact.Transformer.Transform(row))
	views := math.Expm1(logViews)
	if views < 0 {
		views = 0
	}

	return format(views), nil
}

// format shapes the raw view estimate into the serving response:
// fixed +/-20% range, tier cutoffs at 100k and 1M, reach x1.5 and
// shares x0.10.
func format(views float64) *models.Prediction {
	tier := "low"
	switch {
	case views > 1_000_000:
		tier = "high"
	case views > 100_000:
		tier = "medium"
	}

	return &models.Prediction{
		PredictedViews: int64(views),
		ConfidenceRange: models.ConfidenceRange{
			Low:  int64(views * 0.8),
			High: int64(views * 1.2),
		},
		EngagementMetrics: models.EngagementMetrics{
			ViralPotential:  tier,
			EstimatedReach:  int64(views * 1.5),
			PredictedShares: int64(views * 0.1),
		},
	}
}
