package audio

import (
	"math"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePCM(t *testing.T) {
	buf := &goaudio.IntBuffer{
		Data:           []int{0, 16384, -32768},
		SourceBitDepth: 16,
	}
	samples := normalizePCM(buf)
	require.Len(t, samples, 3)
	assert.InDelta(t, 0.0, samples[0], 1e-9)
	assert.InDelta(t, 0.5, samples[1], 1e-9)
	assert.InDelta(t, -1.0, samples[2], 1e-9)

	// Missing source bit depth falls back to 16-bit scaling.
	buf = &goaudio.IntBuffer{Data: []int{32767}}
	assert.InDelta(t, 32767.0/32768.0, normalizePCM(buf)[0], 1e-9)
}

func TestSummarizeEmptySignal(t *testing.T) {
	summary := Summarize(nil)
	assert.True(t, summary.NoAudio)
	assert.Nil(t, summary.QualityMetrics)
	assert.Nil(t, summary.DynamicAnalysis)
}

func TestSummarizeSilence(t *testing.T) {
	summary := Summarize(make([]float64, 4*FrameLength))
	require.False(t, summary.NoAudio)

	assert.Zero(t, summary.QualityMetrics.VolumeLevel)
	assert.Zero(t, summary.QualityMetrics.VolumeConsistency)
	assert.Zero(t, summary.QualityMetrics.HighFrequencyContent)
	assert.Zero(t, summary.DynamicAnalysis.DynamicRange)

	assert.Equal(t, "variable", summary.QualityScores.VolumeQuality)
	assert.Equal(t, "narrow", summary.QualityScores.DynamicRange)
	assert.Equal(t, "basic", summary.QualityScores.FrequencyQuality)
	assert.Equal(t, "medium", summary.QualityScores.OverallQuality)
}

func TestSummarizeSteadyTone(t *testing.T) {
	// A constant-amplitude square wave: perfectly consistent volume and
	// a zero crossing at every sample.
	samples := make([]float64, 8*FrameLength)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 0.5
		} else {
			samples[i] = -0.5
		}
	}

	summary := Summarize(samples)
	require.False(t, summary.NoAudio)

	assert.InDelta(t, 0.5, summary.QualityMetrics.VolumeLevel, 1e-9)
	assert.InDelta(t, 1.0, summary.QualityMetrics.VolumeConsistency, 1e-9)
	assert.InDelta(t, 1.0, summary.QualityMetrics.HighFrequencyContent, 1e-9)
	assert.InDelta(t, 0.0, summary.QualityMetrics.FrequencyVariation, 1e-9)

	assert.Equal(t, "good", summary.QualityScores.VolumeQuality)
	assert.Equal(t, "rich", summary.QualityScores.FrequencyQuality)
	assert.Equal(t, "high", summary.QualityScores.OverallQuality)
}

func TestSummarizeLoudnessOrdering(t *testing.T) {
	// Amplitude ramps up over the track, so the RMS envelope spreads out
	// and the percentile ordering must hold.
	samples := make([]float64, 16*FrameLength)
	for i := range samples {
		amp := float64(i) / float64(len(samples))
		samples[i] = amp * math.Sin(2*math.Pi*float64(i)/64)
	}

	summary := Summarize(samples)
	require.False(t, summary.NoAudio)

	dyn := summary.DynamicAnalysis
	assert.LessOrEqual(t, dyn.NoiseFloor, dyn.MedianVolume)
	assert.LessOrEqual(t, dyn.MedianVolume, dyn.PeakVolume)
	assert.Greater(t, dyn.DynamicRange, 0.0)
}

func TestPercentileLinearInterpolation(t *testing.T) {
	values := []float64{9, 1, 5, 3, 7}

	assert.InDelta(t, 5.0, percentile(values, 0.50), 1e-9)
	assert.InDelta(t, 1.0, percentile(values, 0.0), 1e-9)
	assert.InDelta(t, 9.0, percentile(values, 1.0), 1e-9)
	// Midway between sorted neighbors.
	assert.InDelta(t, 4.0, percentile(values, 0.375), 1e-9)
}

func TestShortTimeWindows(t *testing.T) {
	rms := shortTimeRMS(make([]float64, FrameLength+HopLength), FrameLength, HopLength)
	assert.Len(t, rms, 2)

	zcr := shortTimeZCR(make([]float64, FrameLength), FrameLength, HopLength)
	assert.Len(t, zcr, 1)
}
