package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacklytics/viralcast/internal/models"
)

func sampleRecord(name string) *models.VideoFeatureRecord {
	return &models.VideoFeatureRecord{
		VideoFilename: name,
		Duration:      21.5,
		Visual: &models.VisualSummary{
			TotalFaces:       4,
			TextFrames:       2,
			AvgFacesPerFrame: 0.4,
			SceneTypes:       map[string]int{"simple_background": 10},
			DominantColors:   []string{"#102030"},
		},
		Audio: &models.AudioSummary{
			QualityMetrics: &models.QualityMetrics{VolumeLevel: 0.3, VolumeConsistency: 0.9},
			QualityScores:  &models.QualityScores{VolumeQuality: "good", OverallQuality: "medium"},
			DynamicAnalysis: &models.DynamicAnalysis{
				DynamicRange: 1.1, PeakVolume: 0.8, MedianVolume: 0.4, NoiseFloor: 0.1,
			},
		},
	}
}

func TestFeatureStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.csv")

	store, err := NewCSVFeatureStore(path)
	require.NoError(t, err)
	assert.Zero(t, store.Len())

	require.NoError(t, store.Append(sampleRecord("one.mp4")))
	require.NoError(t, store.Append(sampleRecord("two.mp4")))
	assert.True(t, store.Has("one.mp4"))
	assert.False(t, store.Has("three.mp4"))

	// Reopen from disk.
	reopened, err := NewCSVFeatureStore(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Len())

	records, issues := reopened.Load()
	require.Empty(t, issues)
	require.Len(t, records, 2)

	got := records[0]
	assert.Equal(t, "one.mp4", got.VideoFilename)
	assert.InDelta(t, 21.5, got.Duration, 1e-9)
	require.NotNil(t, got.Visual)
	assert.Equal(t, 4, got.Visual.TotalFaces)
	assert.Equal(t, []string{"#102030"}, got.Visual.DominantColors)
	require.NotNil(t, got.Audio)
	require.NotNil(t, got.Audio.QualityScores)
	assert.Equal(t, "good", got.Audio.QualityScores.VolumeQuality)
	assert.InDelta(t, 1.1, got.Audio.DynamicAnalysis.DynamicRange, 1e-9)
}

func TestFeatureStoreNoAudioRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.csv")
	store, err := NewCSVFeatureStore(path)
	require.NoError(t, err)

	rec := sampleRecord("silent.mp4")
	rec.Audio = models.NoAudioSummary()
	require.NoError(t, store.Append(rec))

	records, issues := store.Load()
	require.Empty(t, issues)
	require.Len(t, records, 1)
	assert.True(t, records[0].Audio.NoAudio)
	assert.Nil(t, records[0].Audio.QualityMetrics)
}

func TestFeatureStoreDegradedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.csv")
	data := `video_filename,duration,social_media_content,audio_features
good.mp4,10,"{""total_faces"": 1}","{""no_audio"": true}"
broken.mp4,12,not-json,"{""no_audio"": true}"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	store, err := NewCSVFeatureStore(path)
	require.NoError(t, err)

	records, issues := store.Load()
	require.Len(t, records, 1)
	assert.Equal(t, "good.mp4", records[0].VideoFilename)
	require.Len(t, issues, 1)
	assert.Equal(t, "broken.mp4", issues[0].Filename)
	assert.Error(t, issues[0].Err)
}

func TestFeatureStoreAppendAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "features.csv")
	store, err := NewCSVFeatureStore(path)
	require.NoError(t, err)

	recs := []*models.VideoFeatureRecord{sampleRecord("a.mp4"), sampleRecord("b.mp4")}
	require.NoError(t, store.AppendAll(recs))
	assert.Equal(t, 2, store.Len())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
