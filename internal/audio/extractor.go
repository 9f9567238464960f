package audio

import (
	"fmt"
	"math"
	"os"
	"sort"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/hacklytics/viralcast/internal/models"
	"github.com/hacklytics/viralcast/internal/utils"
)

// Analysis window geometry over the 16 kHz mono track.
const (
	FrameLength = 2048
	HopLength   = 512
)

// Quality label thresholds, calibrated on short-form ad audio.
const (
	consistencyGoodThreshold  = 0.7
	dynamicRangeWideThreshold = 1.5
	zcrRichThreshold          = 0.1
)

// Extractor decodes the audio track of a video and derives the
// AudioSummary metrics.
type Extractor struct {
	ffmpeg *utils.FFmpegHelper
}

// NewExtractor creates an audio extractor.
func NewExtractor(ffmpeg *utils.FFmpegHelper) *Extractor {
	return &Extractor{ffmpeg: ffmpeg}
}

// Extract returns the audio summary for a video. Extraction failures
// (no audio track, corrupt stream) yield the no-audio marker summary;
// the video itself is still recorded downstream.
func (e *Extractor) Extract(videoPath string, jobID string) *models.AudioSummary {
	wavPath, err := e.ffmpeg.ExtractAudioWAV(videoPath, jobID)
	if err != nil {
		log.WithField("video", videoPath).WithError(err).Warn("audio extraction failed, recording no-audio marker")
		return models.NoAudioSummary()
	}
	defer e.ffmpeg.Cleanup(wavPath)

	samples, err := decodeWAV(wavPath)
	if err != nil {
		log.WithField("video", videoPath).WithError(err).Warn("audio decode failed, recording no-audio marker")
		return models.NoAudioSummary()
	}

	return Summarize(samples)
}

// decodeWAV reads a PCM WAV file into normalized [-1, 1] samples.
func decodeWAV(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("empty audio stream")
	}
	return normalizePCM(buf), nil
}

// normalizePCM scales an integer PCM buffer to [-1, 1]. Buffers
// without a recorded source bit depth are treated as 16-bit, which is
// what the extraction pipeline requests.
func normalizePCM(buf *goaudio.IntBuffer) []float64 {
	var scale float64
	if buf.SourceBitDepth == 0 {
		scale = 1 << 15
	} else {
		scale = float64(int(1) << (buf.SourceBitDepth - 1))
	}

	samples := make([]float64, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = float64(s) / scale
	}
	return samples
}

// Summarize computes the AudioSummary metrics from raw samples. It is
// the pure core of the extractor, split out for testing on synthetic
// signals.
func Summarize(samples []float64) *models.AudioSummary {
	if len(samples) == 0 {
		return models.NoAudioSummary()
	}

	rms := shortTimeRMS(samples, FrameLength, HopLength)
	zcr := shortTimeZCR(samples, FrameLength, HopLength)

	rmsMean := stat.Mean(rms, nil)
	rmsStd := stat.PopStdDev(rms, nil)
	zcrMean := stat.Mean(zcr, nil)
	zcrStd := stat.PopStdDev(zcr, nil)

	volumeConsistency := 0.0
	if rmsMean > 0 {
		volumeConsistency = 1 - rmsStd/rmsMean
	}

	frequencyVariation := 0.0
	if zcrMean > 0 {
		frequencyVariation = zcrStd / zcrMean
	}

	noiseFloor := percentile(rms, 0.10)
	medianVolume := percentile(rms, 0.50)
	peakVolume := percentile(rms, 0.90)

	dynamicRange := 0.0
	if medianVolume > 0 {
		dynamicRange = (peakVolume - noiseFloor) / medianVolume
	}

	metrics := &models.QualityMetrics{
		VolumeLevel:          rmsMean,
		VolumeConsistency:    volumeConsistency,
		HighFrequencyContent: zcrMean,
		FrequencyVariation:   frequencyVariation,
	}

	return &models.AudioSummary{
		QualityMetrics: metrics,
		QualityScores:  scoreQuality(metrics, dynamicRange),
		DynamicAnalysis: &models.DynamicAnalysis{
			DynamicRange: dynamicRange,
			PeakVolume:   peakVolume,
			MedianVolume: medianVolume,
			NoiseFloor:   noiseFloor,
		},
	}
}

// scoreQuality maps the numeric metrics to the qualitative labels.
func scoreQuality(m *models.QualityMetrics, dynamicRange float64) *models.QualityScores {
	scores := &models.QualityScores{
		VolumeQuality:    "variable",
		DynamicRange:     "narrow",
		FrequencyQuality: "basic",
		OverallQuality:   "medium",
	}

	if m.VolumeConsistency > consistencyGoodThreshold {
		scores.VolumeQuality = "good"
	}
	if dynamicRange > dynamicRangeWideThreshold {
		scores.DynamicRange = "wide"
	}
	if m.HighFrequencyContent > zcrRichThreshold {
		scores.FrequencyQuality = "rich"
	}
	if m.VolumeConsistency > consistencyGoodThreshold && m.HighFrequencyContent > zcrRichThreshold {
		scores.OverallQuality = "high"
	}

	return scores
}

// shortTimeRMS computes root-mean-square energy per analysis window.
func shortTimeRMS(samples []float64, frameLength, hopLength int) []float64 {
	var out []float64
	for start := 0; start < len(samples); start += hopLength {
		end := start + frameLength
		if end > len(samples) {
			end = len(samples)
		}

		sum := 0.0
		for _, s := range samples[start:end] {
			sum += s * s
		}
		out = append(out, math.Sqrt(sum/float64(end-start)))

		if end == len(samples) {
			break
		}
	}
	return out
}

// shortTimeZCR computes the zero-crossing fraction per analysis window.
func shortTimeZCR(samples []float64, frameLength, hopLength int) []float64 {
	var out []float64
	for start := 0; start < len(samples); start += hopLength {
		end := start + frameLength
		if end > len(samples) {
			end = len(samples)
		}

		window := samples[start:end]
		crossings := 0
		for i := 1; i < len(window); i++ {
			if (window[i] >= 0) != (window[i-1] >= 0) {
				crossings++
			}
		}
		if len(window) > 1 {
			out = append(out, float64(crossings)/float64(len(window)-1))
		} else {
			out = append(out, 0)
		}

		if end == len(samples) {
			break
		}
	}
	return out
}

// percentile interpolates linearly over the sorted values at rank
// p*(n-1), the numpy percentile convention the loudness envelope was
// calibrated with.
func percentile(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	h := p * float64(len(sorted)-1)
	i := int(math.Floor(h))
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-float64(i))*(sorted[i+1]-sorted[i])
}
