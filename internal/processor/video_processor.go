package processor

import (
	"image"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hacklytics/viralcast/internal/audio"
	"github.com/hacklytics/viralcast/internal/models"
	"github.com/hacklytics/viralcast/internal/utils"
	"github.com/hacklytics/viralcast/internal/vision"
)

// VideoProcessor runs the full analysis pipeline over one video:
// frame sampling, per-frame vision analysis, aggregation and audio
// metrics.
type VideoProcessor struct {
	ffmpeg        *utils.FFmpegHelper
	vision        *vision.Context
	audio         *audio.Extractor
	frameInterval float64
	concurrency   int
	log           *logrus.Entry
}

// NewVideoProcessor wires the pipeline stages.
func NewVideoProcessor(ffmpeg *utils.FFmpegHelper, visionCtx *vision.Context, frameInterval float64, concurrency int) *VideoProcessor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &VideoProcessor{
		ffmpeg:        ffmpeg,
		vision:        visionCtx,
		audio:         audio.NewExtractor(ffmpeg),
		frameInterval: frameInterval,
		concurrency:   concurrency,
		log:           logrus.WithField("component", "processor"),
	}
}

// Process analyzes one video file into a feature record. Frame
// analysis runs under a bounded worker pool; results keep frame order
// via indexed writes.
func (p *VideoProcessor) Process(videoPath string, jobID string) (*models.VideoFeatureRecord, error) {
	sample, err := p.ffmpeg.SampleFrames(videoPath, p.frameInterval, jobID)
	if err != nil {
		return nil, err
	}

	analyses := make([]models.FrameAnalysis, len(sample.Frames))
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for i, frame := range sample.Frames {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, frame image.Image) {
			defer wg.Done()
			defer func() { <-sem }()
			analyses[i] = p.vision.AnalyzeFrame(frame)
		}(i, frame)
	}
	wg.Wait()

	visual, err := vision.Aggregate(analyses, videoPath)
	if err != nil {
		return nil, err
	}

	audioSummary := p.audio.Extract(videoPath, jobID)

	p.log.WithFields(logrus.Fields{
		"video":    videoPath,
		"frames":   len(analyses),
		"faces":    visual.TotalFaces,
		"no_audio": audioSummary.NoAudio,
	}).Info("Video analyzed")

	return buildRecord(videoPath, sample.Duration, visual, audioSummary), nil
}

// buildRecord keys the record by the bare downloaded filename. The
// outcome table joins on that name, never on the local directory
// layout the video happens to sit in.
func buildRecord(videoPath string, duration float64, visual *models.VisualSummary, audio *models.AudioSummary) *models.VideoFeatureRecord {
	return &models.VideoFeatureRecord{
		VideoFilename: filepath.Base(videoPath),
		Duration:      duration,
		Visual:        visual,
		Audio:         audio,
	}
}
