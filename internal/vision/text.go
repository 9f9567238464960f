package vision

import "image"

// TextDetector reports whether a frame contains visible text.
//
// Two implementations of this contract exist:
//   - BrightPixelDetector (below): a cheap binarized-bright-pixel
//     heuristic, the default when no learned detector is available.
//   - An EAST-style neural detector can be plugged in behind this
//     interface (any spatial cell with confidence > 0.5 counts as
//     text). It is not bundled because no trained weights ship with
//     the worker.
type TextDetector interface {
	Name() string
	HasText(gray *image.Gray) bool
}

// BrightPixelDetector flags a frame as containing text when more than
// BrightFraction of pixels survive Otsu binarization of the
// high-contrast band. Overlay captions on short-form video are bright
// and high-contrast, which this captures without a neural model.
type BrightPixelDetector struct {
	// BrightFraction is the minimum fraction of bright pixels.
	BrightFraction float64
}

// NewBrightPixelDetector returns the heuristic detector with the
// default 1% threshold.
func NewBrightPixelDetector() *BrightPixelDetector {
	return &BrightPixelDetector{BrightFraction: 0.01}
}

func (d *BrightPixelDetector) Name() string { return "bright-pixel-heuristic" }

func (d *BrightPixelDetector) HasText(gray *image.Gray) bool {
	level := otsuThreshold(gray)
	// Text overlays sit well above the Otsu split; look only at the
	// top of the range.
	if level < 200 {
		level = 200
	}
	return binarizeAbove(gray, level) > d.BrightFraction
}
