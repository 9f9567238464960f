package vision

import (
	"fmt"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// Thresholds are the fixed design constants of the frame analyzer.
// They are tunable configuration, not derived values.
type Thresholds struct {
	// Screen-recording heuristic.
	MinLineCount    int
	SolidRegionFrac float64
	MinLineLength   int
	MaxLineGap      int

	// Canny double threshold.
	EdgeLowThreshold  int
	EdgeHighThreshold int

	// Scene-type edge-density cutoffs.
	SimpleSceneDensity  float64
	ComplexSceneDensity float64

	// Minimum cascade detection quality to count a face.
	FaceQuality float32
}

// DefaultThresholds returns the calibrated constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinLineCount:        10,
		SolidRegionFrac:     0.30,
		MinLineLength:       100,
		MaxLineGap:          10,
		EdgeLowThreshold:    50,
		EdgeHighThreshold:   150,
		SimpleSceneDensity:  0.10,
		ComplexSceneDensity: 0.40,
		FaceQuality:         5.0,
	}
}

// Context holds everything the frame analyzer needs: the unpacked face
// cascade, the active text detector, the threshold constants, and the
// clustering seed. It is built once at startup and is read-only
// afterwards, so a single Context is safe to share across worker
// goroutines.
type Context struct {
	classifier  *pigo.Pigo
	Text        TextDetector
	Thresholds  Thresholds
	ClusterSeed int64
}

// NewContext loads the face cascade from disk and wires the default
// text detector.
func NewContext(cascadePath string) (*Context, error) {
	cascade, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read face cascade %s: %w", cascadePath, err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack face cascade: %w", err)
	}

	return &Context{
		classifier:  classifier,
		Text:        NewBrightPixelDetector(),
		Thresholds:  DefaultThresholds(),
		ClusterSeed: 42,
	}, nil
}
