package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacklytics/viralcast/internal/models"
)

func sampleRecord() *models.VideoFeatureRecord {
	return &models.VideoFeatureRecord{
		VideoFilename: "clip.mp4",
		Duration:      30,
		Visual: &models.VisualSummary{
			TotalFaces:                15,
			TextFrames:                0,
			ScreenRecordingFrames:     6,
			AvgFacesPerFrame:          0.5,
			TextPercentage:            0,
			ScreenRecordingPercentage: 20,
		},
		Audio: &models.AudioSummary{
			QualityMetrics: &models.QualityMetrics{
				VolumeLevel:          0.4,
				VolumeConsistency:    0.8,
				HighFrequencyContent: 0.2,
				FrequencyVariation:   0.3,
			},
			DynamicAnalysis: &models.DynamicAnalysis{
				DynamicRange: 1.2,
				PeakVolume:   0.9,
				MedianVolume: 0.5,
				NoiseFloor:   0.1,
			},
		},
	}
}

func TestEngineerRatios(t *testing.T) {
	v := Engineer(sampleRecord(), 45)

	assert.InDelta(t, 0.5, v["face_to_duration_ratio"], 1e-9)
	assert.InDelta(t, 0.0, v["text_density"], 1e-9)
	assert.InDelta(t, 0.2, v["screen_recording_density"], 1e-9)

	// text_frames is zero, so the divisor floors at 1.
	assert.InDelta(t, 15.0, v["face_text_ratio"], 1e-9)
	assert.InDelta(t, 0.2, v["content_density"], 1e-9)
	assert.InDelta(t, 45.0, v["length"], 1e-9)

	assert.InDelta(t, 0.5, v["audio_quality_score"], 1e-9)
	assert.InDelta(t, 0.8, v["audio_dynamics_score"], 1e-9)
	assert.InDelta(t, (0.9-0.1)/0.9, v["audio_clarity_score"], 1e-9)
	assert.InDelta(t, (0.5+0.0+0.5)/3, v["engagement_score"], 1e-9)
}

func TestEngineerZeroGuards(t *testing.T) {
	rec := &models.VideoFeatureRecord{
		VideoFilename: "zero.mp4",
		Duration:      0,
		Visual:        &models.VisualSummary{TotalFaces: 3},
		Audio:         models.NoAudioSummary(),
	}

	v := Engineer(rec, 0)
	for name, value := range v {
		assert.Falsef(t, math.IsNaN(value) || math.IsInf(value, 0), "feature %s is not finite: %v", name, value)
	}
	// Zero duration floors to 1.
	assert.InDelta(t, 3.0, v["face_to_duration_ratio"], 1e-9)
	// Zero peak volume floors to 0.001.
	assert.InDelta(t, 0.0, v["audio_clarity_score"], 1e-9)
}

func TestEngineerProducesAllCandidates(t *testing.T) {
	v := Engineer(sampleRecord(), 10)
	for _, name := range CandidateColumns() {
		_, ok := v[name]
		assert.Truef(t, ok, "missing candidate column %s", name)
	}
}

func TestNormalizeVideoID(t *testing.T) {
	assert.Equal(t,
		"https://example.com/ads/abc123",
		NormalizeVideoID("https：⧸⧸example.com⧸ads⧸abc123.mp4"))
	assert.Equal(t, "plain", NormalizeVideoID("plain.mp4"))
	assert.Equal(t, "noext", NormalizeVideoID("noext"))
}

func TestParseVisual(t *testing.T) {
	visual, err := ParseVisual(`{"total_faces": 4, "text_frames": 2, "scene_types": {"simple_background": 3}}`)
	require.NoError(t, err)
	assert.Equal(t, 4, visual.TotalFaces)
	assert.Equal(t, 2, visual.TextFrames)
	assert.Equal(t, 3, visual.SceneTypes["simple_background"])
}

func TestParseVisualSingleQuotedLegacyRows(t *testing.T) {
	visual, err := ParseVisual(`{'total_faces': 7, 'dominant_colors': ['#ff0000']}`)
	require.NoError(t, err)
	assert.Equal(t, 7, visual.TotalFaces)
	assert.Equal(t, []string{"#ff0000"}, visual.DominantColors)
}

func TestParseAudioEmptyCell(t *testing.T) {
	_, err := ParseAudio("   ")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseAudioGarbage(t *testing.T) {
	_, err := ParseAudio("not json at all")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.NotNil(t, parseErr.Unwrap())
}

func TestParseAudioMissingFieldsDefaultZero(t *testing.T) {
	audio, err := ParseAudio(`{"quality_metrics": {"volume_level": 0.3}}`)
	require.NoError(t, err)
	require.NotNil(t, audio.QualityMetrics)
	assert.InDelta(t, 0.3, audio.QualityMetrics.VolumeLevel, 1e-9)
	assert.Zero(t, audio.QualityMetrics.VolumeConsistency)
	assert.Nil(t, audio.DynamicAnalysis)
	assert.False(t, audio.NoAudio)
}
