package vision

import "image"

// countStraightSegments counts long straight runs of edge pixels along
// rows and columns of a binary edge map. Screen recordings are full of
// axis-aligned UI chrome, so a high count is a strong signal. A small
// gap tolerance keeps anti-aliased lines from splitting into
// fragments.
func countStraightSegments(edges *image.Gray, minLength, maxGap int) int {
	w := edges.Rect.Dx()
	h := edges.Rect.Dy()
	segments := 0

	// Horizontal runs.
	for y := 0; y < h; y++ {
		run, gap := 0, 0
		for x := 0; x < w; x++ {
			if edges.Pix[y*edges.Stride+x] != 0 {
				run++
				gap = 0
				continue
			}
			gap++
			if gap > maxGap {
				if run >= minLength {
					segments++
				}
				run = 0
			}
		}
		if run >= minLength {
			segments++
		}
	}

	// Vertical runs.
	for x := 0; x < w; x++ {
		run, gap := 0, 0
		for y := 0; y < h; y++ {
			if edges.Pix[y*edges.Stride+x] != 0 {
				run++
				gap = 0
				continue
			}
			gap++
			if gap > maxGap {
				if run >= minLength {
					segments++
				}
				run = 0
			}
		}
		if run >= minLength {
			segments++
		}
	}

	return segments
}
