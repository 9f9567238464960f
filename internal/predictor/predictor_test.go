package predictor

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacklytics/viralcast/internal/features"
	"github.com/hacklytics/viralcast/internal/ml"
	"github.com/hacklytics/viralcast/internal/models"
	"github.com/hacklytics/viralcast/internal/trainer"
)

// constModel always predicts the same log-view value.
type constModel struct {
	LogViews float64
}

func (m constModel) Predict([]float64) float64 { return m.LogViews }

func testArtifact(logViews float64) *trainer.Artifact {
	rows := [][]float64{
		make([]float64, len(features.CandidateColumns())),
		make([]float64, len(features.CandidateColumns())),
	}
	for i := range rows[1] {
		rows[1][i] = 1
	}

	return &trainer.Artifact{
		Columns:     features.CandidateColumns(),
		Transformer: ml.FitQuantileTransformer(rows),
		Model:       constModel{LogViews: logViews},
		Family:      "forest",
		TrainedAt:   time.Now(),
	}
}

func testRecord() *models.VideoFeatureRecord {
	return &models.VideoFeatureRecord{
		VideoFilename: "clip.mp4",
		Duration:      30,
		Visual:        &models.VisualSummary{TotalFaces: 10, TextFrames: 3},
		Audio:         models.NoAudioSummary(),
	}
}

func TestPredictFormatsTiers(t *testing.T) {
	cases := []struct {
		views float64
		tier  string
	}{
		{5000, "low"},
		{99000, "low"},
		{500000, "medium"},
		{2000000, "high"},
	}

	for _, tc := range cases {
		p := New(testArtifact(math.Log1p(tc.views)))
		got, err := p.Predict(testRecord(), 30)
		require.NoError(t, err)

		assert.Equal(t, tc.tier, got.EngagementMetrics.ViralPotential, "views=%v", tc.views)
		assert.InDelta(t, tc.views, float64(got.PredictedViews), 1)
		assert.InDelta(t, tc.views*0.8, float64(got.ConfidenceRange.Low), 1)
		assert.InDelta(t, tc.views*1.2, float64(got.ConfidenceRange.High), 1)
		assert.InDelta(t, tc.views*1.5, float64(got.EngagementMetrics.EstimatedReach), 1)
		assert.InDelta(t, tc.views*0.1, float64(got.EngagementMetrics.PredictedShares), 1)
	}
}

func TestPredictClampsNegativeViews(t *testing.T) {
	// A strongly negative log prediction maps below zero views.
	p := New(testArtifact(-5))
	got, err := p.Predict(testRecord(), 30)
	require.NoError(t, err)

	assert.Zero(t, got.PredictedViews)
	assert.Zero(t, got.ConfidenceRange.Low)
	assert.Equal(t, "low", got.EngagementMetrics.ViralPotential)
}

func TestPredictDeterministic(t *testing.T) {
	p := New(testArtifact(math.Log1p(42000)))

	first, err := p.Predict(testRecord(), 30)
	require.NoError(t, err)
	second, err := p.Predict(testRecord(), 30)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPredictSchemaMismatch(t *testing.T) {
	artifact := testArtifact(1)
	artifact.Columns = append([]string{"definitely_not_a_feature"}, artifact.Columns...)

	p := New(artifact)
	_, err := p.Predict(testRecord(), 30)

	var mismatch *models.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "definitely_not_a_feature", mismatch.Column)
}
