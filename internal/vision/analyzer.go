package vision

import (
	"image"
	"sort"

	"github.com/hacklytics/viralcast/internal/models"
)

// AnalyzeFrame runs all per-frame detectors over one sampled frame.
// It is a pure function of the pixel data plus the read-only Context,
// so frames can be analyzed concurrently and in any order.
func (c *Context) AnalyzeFrame(img image.Image) models.FrameAnalysis {
	gray := toGray(img)
	edges := cannyEdges(gray, c.Thresholds.EdgeLowThreshold, c.Thresholds.EdgeHighThreshold)
	density := edgeDensity(edges)

	return models.FrameAnalysis{
		FaceCount:         c.CountFaces(gray),
		IsScreenRecording: c.isScreenRecording(gray, edges),
		HasText:           c.Text.HasText(gray),
		DominantColors:    DominantColors(img, c.ClusterSeed),
		SceneType:         c.classifyScene(density),
	}
}

// isScreenRecording is true when the frame shows both the straight-line
// clutter of UI chrome and a large solid-color region. Both thresholds
// must trip together; either alone is common in ordinary footage.
func (c *Context) isScreenRecording(gray *image.Gray, edges *image.Gray) bool {
	lines := countStraightSegments(edges, c.Thresholds.MinLineLength, c.Thresholds.MaxLineGap)
	if lines <= c.Thresholds.MinLineCount {
		return false
	}

	blurred := gaussianBlur5(gray)
	level := otsuThreshold(blurred)
	solid := binarizeAbove(blurred, level)

	return solid > c.Thresholds.SolidRegionFrac
}

// classifyScene maps edge-pixel density to the scene-type enum.
func (c *Context) classifyScene(density float64) models.SceneType {
	switch {
	case density < c.Thresholds.SimpleSceneDensity:
		return models.SceneSimpleBackground
	case density > c.Thresholds.ComplexSceneDensity:
		return models.SceneComplexScene
	default:
		return models.SceneModerateComplexity
	}
}

// Aggregate folds per-frame analyses into a VisualSummary. An empty
// frame sequence yields EmptyVideoError rather than NaN rates.
func Aggregate(frames []models.FrameAnalysis, videoPath string) (*models.VisualSummary, error) {
	if len(frames) == 0 {
		return nil, &models.EmptyVideoError{Path: videoPath}
	}

	summary := &models.VisualSummary{
		SceneTypes: make(map[string]int),
	}
	colorSet := make(map[string]struct{})

	for _, frame := range frames {
		summary.TotalFaces += frame.FaceCount
		if frame.HasText {
			summary.TextFrames++
		}
		if frame.IsScreenRecording {
			summary.ScreenRecordingFrames++
		}
		summary.SceneTypes[string(frame.SceneType)]++
		for _, color := range frame.DominantColors {
			colorSet[color] = struct{}{}
		}
	}

	n := float64(len(frames))
	summary.AvgFacesPerFrame = float64(summary.TotalFaces) / n
	summary.TextPercentage = float64(summary.TextFrames) / n * 100
	summary.ScreenRecordingPercentage = float64(summary.ScreenRecordingFrames) / n * 100

	summary.DominantColors = make([]string, 0, len(colorSet))
	for color := range colorSet {
		summary.DominantColors = append(summary.DominantColors, color)
	}
	sort.Strings(summary.DominantColors)

	return summary, nil
}
