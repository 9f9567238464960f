package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacklytics/viralcast/internal/models"
)

func solidGray(w, h int, level uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	return img
}

func TestOtsuThresholdBimodal(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 100; x++ {
			level := uint8(100)
			if x >= 50 {
				level = 200
			}
			img.Pix[y*img.Stride+x] = level
		}
	}

	level := otsuThreshold(img)
	assert.GreaterOrEqual(t, level, uint8(100))
	assert.Less(t, level, uint8(200))
	assert.InDelta(t, 0.5, binarizeAbove(img, level), 1e-9)
}

func TestBinarizeAboveEmptyImage(t *testing.T) {
	assert.Zero(t, binarizeAbove(image.NewGray(image.Rect(0, 0, 0, 0)), 128))
}

func TestEdgeDensity(t *testing.T) {
	edges := image.NewGray(image.Rect(0, 0, 10, 10))
	assert.Zero(t, edgeDensity(edges))

	for x := 0; x < 10; x++ {
		edges.Pix[5*edges.Stride+x] = 255
	}
	assert.InDelta(t, 0.1, edgeDensity(edges), 1e-9)
}

func TestCountStraightSegments(t *testing.T) {
	edges := image.NewGray(image.Rect(0, 0, 200, 200))

	// One long horizontal line and one long vertical line.
	for x := 0; x < 150; x++ {
		edges.Pix[20*edges.Stride+x] = 255
	}
	for y := 0; y < 150; y++ {
		edges.Pix[y*edges.Stride+30] = 255
	}

	assert.Equal(t, 2, countStraightSegments(edges, 100, 10))
	// Both lines are shorter than 180, so a stricter minimum finds none.
	assert.Equal(t, 0, countStraightSegments(edges, 180, 10))
}

func TestCountStraightSegmentsBridgesSmallGaps(t *testing.T) {
	edges := image.NewGray(image.Rect(0, 0, 200, 50))
	for x := 0; x < 120; x++ {
		if x == 60 {
			continue // single-pixel gap within tolerance
		}
		edges.Pix[10*edges.Stride+x] = 255
	}
	assert.Equal(t, 1, countStraightSegments(edges, 100, 10))
}

func TestCannyEdgesFlatImageHasNoEdges(t *testing.T) {
	edges := cannyEdges(solidGray(64, 64, 128), 50, 150)
	assert.Zero(t, edgeDensity(edges))
}

func TestCannyEdgesFindsStrongBoundary(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 32; x < 64; x++ {
			img.Pix[y*img.Stride+x] = 255
		}
	}
	edges := cannyEdges(img, 50, 150)
	assert.Greater(t, edgeDensity(edges), 0.0)
}

func TestDominantColorsSolidFrame(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	colors := DominantColors(img, 42)
	require.Len(t, colors, 3)
	for _, c := range colors {
		assert.Equal(t, "#ff0000", c)
	}
}

func TestDominantColorsDeterministic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 48, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 5), G: uint8(y * 5), B: 40, A: 255})
		}
	}

	first := DominantColors(img, 42)
	second := DominantColors(img, 42)
	assert.Equal(t, first, second)
	for _, c := range first {
		assert.Regexp(t, `^#[0-9a-f]{6}$`, c)
	}
}

func TestClassifyScene(t *testing.T) {
	c := &Context{Thresholds: DefaultThresholds()}

	assert.Equal(t, models.SceneSimpleBackground, c.classifyScene(0.05))
	assert.Equal(t, models.SceneModerateComplexity, c.classifyScene(0.10))
	assert.Equal(t, models.SceneModerateComplexity, c.classifyScene(0.25))
	assert.Equal(t, models.SceneModerateComplexity, c.classifyScene(0.40))
	assert.Equal(t, models.SceneComplexScene, c.classifyScene(0.41))
}

func TestBrightPixelDetector(t *testing.T) {
	d := NewBrightPixelDetector()

	dark := solidGray(64, 64, 30)
	assert.False(t, d.HasText(dark))

	// A caption-sized bright band over a dark frame.
	withCaption := solidGray(64, 64, 30)
	for y := 50; y < 60; y++ {
		for x := 10; x < 54; x++ {
			withCaption.Pix[y*withCaption.Stride+x] = 250
		}
	}
	assert.True(t, d.HasText(withCaption))
}

func TestCountFacesWithoutClassifier(t *testing.T) {
	c := &Context{Thresholds: DefaultThresholds()}
	assert.Zero(t, c.CountFaces(solidGray(64, 64, 128)))
}

func TestAggregate(t *testing.T) {
	frames := []models.FrameAnalysis{
		{FaceCount: 2, HasText: true, SceneType: models.SceneSimpleBackground, DominantColors: []string{"#ff0000", "#00ff00"}},
		{FaceCount: 1, IsScreenRecording: true, SceneType: models.SceneComplexScene, DominantColors: []string{"#ff0000"}},
		{FaceCount: 0, SceneType: models.SceneSimpleBackground, DominantColors: []string{"#0000ff"}},
		{FaceCount: 3, HasText: true, SceneType: models.SceneModerateComplexity},
	}

	summary, err := Aggregate(frames, "clip.mp4")
	require.NoError(t, err)

	assert.Equal(t, 6, summary.TotalFaces)
	assert.Equal(t, 2, summary.TextFrames)
	assert.Equal(t, 1, summary.ScreenRecordingFrames)
	assert.InDelta(t, 1.5, summary.AvgFacesPerFrame, 1e-9)
	assert.InDelta(t, 50.0, summary.TextPercentage, 1e-9)
	assert.InDelta(t, 25.0, summary.ScreenRecordingPercentage, 1e-9)
	assert.Equal(t, map[string]int{
		"simple_background":   2,
		"complex_scene":       1,
		"moderate_complexity": 1,
	}, summary.SceneTypes)
	assert.Equal(t, []string{"#0000ff", "#00ff00", "#ff0000"}, summary.DominantColors)
}

func TestAggregateEmptyVideo(t *testing.T) {
	_, err := Aggregate(nil, "empty.mp4")

	var emptyErr *models.EmptyVideoError
	require.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, "empty.mp4", emptyErr.Path)
}
