package models

// SceneType classifies per-frame visual complexity.
type SceneType string

const (
	SceneSimpleBackground   SceneType = "simple_background"
	SceneModerateComplexity SceneType = "moderate_complexity"
	SceneComplexScene       SceneType = "complex_scene"
)

// FrameAnalysis holds the analysis of a single sampled frame. It is
// ephemeral: frames are folded into a VisualSummary and discarded.
type FrameAnalysis struct {
	FaceCount         int
	IsScreenRecording bool
	HasText           bool
	DominantColors    []string
	SceneType         SceneType
}

// VisualSummary aggregates all sampled frames of one video.
type VisualSummary struct {
	TotalFaces                int            `json:"total_faces"`
	TextFrames                int            `json:"text_frames"`
	ScreenRecordingFrames     int            `json:"screen_recording_frames"`
	AvgFacesPerFrame          float64        `json:"avg_faces_per_frame"`
	TextPercentage            float64        `json:"text_percentage"`
	ScreenRecordingPercentage float64        `json:"screen_recording_percentage"`
	SceneTypes                map[string]int `json:"scene_types"`
	DominantColors            []string       `json:"dominant_colors"`
}

// QualityMetrics are the short-time energy / zero-crossing statistics
// of the audio track.
type QualityMetrics struct {
	VolumeLevel          float64 `json:"volume_level"`
	VolumeConsistency    float64 `json:"volume_consistency"`
	HighFrequencyContent float64 `json:"high_frequency_content"`
	FrequencyVariation   float64 `json:"frequency_variation"`
}

// QualityScores are qualitative labels derived from QualityMetrics
// using fixed empirical thresholds.
type QualityScores struct {
	VolumeQuality    string `json:"volume_quality"`
	DynamicRange     string `json:"dynamic_range"`
	FrequencyQuality string `json:"frequency_quality"`
	OverallQuality   string `json:"overall_quality"`
}

// DynamicAnalysis describes the loudness envelope of the audio track.
// Invariant: NoiseFloor <= MedianVolume <= PeakVolume (p10/p50/p90 of
// short-time RMS energy).
type DynamicAnalysis struct {
	DynamicRange float64 `json:"dynamic_range"`
	PeakVolume   float64 `json:"peak_volume"`
	MedianVolume float64 `json:"median_volume"`
	NoiseFloor   float64 `json:"noise_floor"`
}

// AudioSummary is the audio analysis of one video. When the video has
// no decodable audio track, NoAudio is set and the nested blocks are
// nil; the video is still recorded in the feature store.
type AudioSummary struct {
	QualityMetrics  *QualityMetrics  `json:"quality_metrics"`
	QualityScores   *QualityScores   `json:"quality_scores"`
	DynamicAnalysis *DynamicAnalysis `json:"dynamic_analysis"`
	NoAudio         bool             `json:"no_audio,omitempty"`
}

// NoAudioSummary returns the marker summary recorded when audio
// extraction fails.
func NoAudioSummary() *AudioSummary {
	return &AudioSummary{NoAudio: true}
}

// VideoFeatureRecord is the persisted unit of the feature store: one
// row per successfully analyzed video. Immutable after creation.
type VideoFeatureRecord struct {
	VideoFilename string         `json:"video_filename"`
	Duration      float64        `json:"duration"`
	Visual        *VisualSummary `json:"social_media_content"`
	Audio         *AudioSummary  `json:"audio_features"`
}

// AnalyzeJob is the payload of a queued analysis task.
type AnalyzeJob struct {
	JobID     string `json:"job_id"`
	VideoPath string `json:"video_path"`
}

// ProgressUpdate is published to Redis while a batch runs.
type ProgressUpdate struct {
	JobID     string  `json:"job_id"`
	Status    string  `json:"status"`
	Progress  float64 `json:"progress"`
	Message   string  `json:"message"`
	Processed int     `json:"processed"`
	Skipped   int     `json:"skipped"`
	Total     int     `json:"total"`
}

// ConfidenceRange is a fixed +/-20% band around the prediction. It is
// a heuristic margin, not a statistical interval.
type ConfidenceRange struct {
	Low  int64 `json:"low"`
	High int64 `json:"high"`
}

// EngagementMetrics are fixed-multiplier projections derived from the
// predicted view count.
type EngagementMetrics struct {
	ViralPotential  string `json:"viral_potential"`
	EstimatedReach  int64  `json:"estimated_reach"`
	PredictedShares int64  `json:"predicted_shares"`
}

// Prediction is the serving-time response shape.
type Prediction struct {
	PredictedViews    int64             `json:"predicted_views"`
	ConfidenceRange   ConfidenceRange   `json:"confidence_range"`
	EngagementMetrics EngagementMetrics `json:"engagement_metrics"`
}

// EvalReport carries held-out metrics in original (non-log) view scale.
type EvalReport struct {
	RMSE     float64 `json:"rmse"`
	R2       float64 `json:"r2"`
	MAPE     float64 `json:"mape"`
	TrainN   int     `json:"train_n"`
	TestN    int     `json:"test_n"`
	Features int     `json:"features"`
}
