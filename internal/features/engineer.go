package features

import (
	"github.com/hacklytics/viralcast/internal/models"
)

// Vector is a named feature vector over one video.
type Vector map[string]float64

// candidateColumns is the full ordered candidate feature list used at
// training time. Order matters: it is the deterministic tie-break
// order for correlation pruning and the default model column order.
var candidateColumns = []string{
	"duration", "length", "total_faces", "text_frames", "screen_recording_frames",
	"avg_faces_per_frame", "text_percentage", "screen_recording_percentage",

	"volume_level", "volume_consistency", "high_frequency_content",
	"frequency_variation", "dynamic_range", "peak_volume", "median_volume",
	"noise_floor",

	"face_to_duration_ratio", "text_density", "screen_recording_density",
	"audio_quality_score", "audio_dynamics_score", "audio_clarity_score",
	"face_text_ratio", "content_density", "engagement_score",
}

// CandidateColumns returns the ordered candidate feature names.
func CandidateColumns() []string {
	out := make([]string, len(candidateColumns))
	copy(out, candidateColumns)
	return out
}

// Engineer expands one feature record into the full feature vector.
//
// This is the single shared implementation invoked by both the trainer
// and the predictor; the formulas must never be duplicated per
// pipeline stage. Every divisor is floored (1 for counts and
// durations, 0.001 for magnitudes) so degenerate inputs produce finite
// ratios, never Inf or NaN. Missing nested blocks contribute zeros.
func Engineer(rec *models.VideoFeatureRecord, length float64) Vector {
	visual := rec.Visual
	if visual == nil {
		visual = &models.VisualSummary{}
	}

	var quality models.QualityMetrics
	var dynamics models.DynamicAnalysis
	if rec.Audio != nil {
		if rec.Audio.QualityMetrics != nil {
			quality = *rec.Audio.QualityMetrics
		}
		if rec.Audio.DynamicAnalysis != nil {
			dynamics = *rec.Audio.DynamicAnalysis
		}
	}

	duration := rec.Duration
	totalFaces := float64(visual.TotalFaces)
	textFrames := float64(visual.TextFrames)
	srFrames := float64(visual.ScreenRecordingFrames)

	v := Vector{
		"duration":                    duration,
		"length":                      length,
		"total_faces":                 totalFaces,
		"text_frames":                 textFrames,
		"screen_recording_frames":     srFrames,
		"avg_faces_per_frame":         visual.AvgFacesPerFrame,
		"text_percentage":             visual.TextPercentage,
		"screen_recording_percentage": visual.ScreenRecordingPercentage,

		"volume_level":           quality.VolumeLevel,
		"volume_consistency":     quality.VolumeConsistency,
		"high_frequency_content": quality.HighFrequencyContent,
		"frequency_variation":    quality.FrequencyVariation,
		"dynamic_range":          dynamics.DynamicRange,
		"peak_volume":            dynamics.PeakVolume,
		"median_volume":          dynamics.MedianVolume,
		"noise_floor":            dynamics.NoiseFloor,
	}

	v["face_to_duration_ratio"] = totalFaces / floorAt(duration, 1)
	v["text_density"] = textFrames / floorAt(duration, 1)
	v["screen_recording_density"] = srFrames / floorAt(duration, 1)

	v["audio_quality_score"] = (quality.VolumeConsistency + quality.HighFrequencyContent) / 2
	v["audio_dynamics_score"] = (dynamics.DynamicRange + quality.VolumeLevel) / 2
	v["audio_clarity_score"] = (dynamics.PeakVolume - dynamics.NoiseFloor) / floorAt(dynamics.PeakVolume, 0.001)

	v["face_text_ratio"] = totalFaces / floorAt(textFrames, 1)
	v["content_density"] = (textFrames + srFrames) / floorAt(duration, 1)
	v["engagement_score"] = (v["face_to_duration_ratio"] + v["text_density"] + v["audio_quality_score"]) / 3

	return v
}

// floorAt guards a divisor against zero and negatives.
func floorAt(value, floor float64) float64 {
	if value < floor {
		return floor
	}
	return value
}
