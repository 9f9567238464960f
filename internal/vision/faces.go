package vision

import (
	"image"

	pigo "github.com/esimov/pigo/core"
)

// CountFaces runs the cascade over the grayscale frame and returns the
// number of clustered detections above the quality threshold. Counts
// only; no identity or landmark information is produced.
func (c *Context) CountFaces(gray *image.Gray) int {
	if c.classifier == nil {
		return 0
	}

	rows := gray.Rect.Dy()
	cols := gray.Rect.Dx()
	if rows < 20 || cols < 20 {
		return 0
	}

	params := pigo.CascadeParams{
		MinSize:     20,
		MaxSize:     max(rows, cols),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: gray.Pix,
			Rows:   rows,
			Cols:   cols,
			Dim:    gray.Stride,
		},
	}

	dets := c.classifier.RunCascade(params, 0.0)
	dets = c.classifier.ClusterDetections(dets, 0.2)

	count := 0
	for _, det := range dets {
		if det.Q >= c.Thresholds.FaceQuality {
			count++
		}
	}

	return count
}
