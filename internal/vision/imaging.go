package vision

import (
	"image"
	"image/color"
)

// toGray converts a frame to an origin-aligned grayscale image using
// the standard luma weights.
func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x-bounds.Min.X, y-bounds.Min.Y, color.GrayModel.Convert(img.At(x, y)))
		}
	}

	return gray
}

// gaussianBlur5 applies a separable 5x5 Gaussian kernel
// ([1 4 6 4 1]/16 per axis), mirroring edge pixels at the border.
func gaussianBlur5(src *image.Gray) *image.Gray {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	kernel := [5]int{1, 4, 6, 4, 1}

	tmp := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for k := -2; k <= 2; k++ {
				xx := clamp(x+k, 0, w-1)
				sum += int(src.Pix[y*src.Stride+xx]) * kernel[k+2]
			}
			tmp[y*w+x] = sum / 16
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for k := -2; k <= 2; k++ {
				yy := clamp(y+k, 0, h-1)
				sum += tmp[yy*w+x] * kernel[k+2]
			}
			dst.Pix[y*dst.Stride+x] = uint8(sum / 16)
		}
	}

	return dst
}

// sobelMagnitude computes per-pixel gradient magnitude with 3x3 Sobel
// operators. Border pixels are left at zero.
func sobelMagnitude(src *image.Gray) []int {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	mag := make([]int, w*h)

	at := func(x, y int) int { return int(src.Pix[y*src.Stride+x]) }

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)

			if gx < 0 {
				gx = -gx
			}
			if gy < 0 {
				gy = -gy
			}
			mag[y*w+x] = gx + gy
		}
	}

	return mag
}

// cannyEdges produces a binary edge map: Gaussian blur, Sobel gradient
// magnitude, then double thresholding (50/150 on the 8-bit scale) with
// hysteresis so weak edges survive only when connected to strong ones.
func cannyEdges(src *image.Gray, lowThreshold, highThreshold int) *image.Gray {
	w := src.Rect.Dx()
	h := src.Rect.Dy()

	blurred := gaussianBlur5(src)
	mag := sobelMagnitude(blurred)

	const (
		none   = 0
		weak   = 1
		strong = 2
	)

	marks := make([]uint8, w*h)
	var stack []int
	for i, m := range mag {
		switch {
		case m >= highThreshold:
			marks[i] = strong
			stack = append(stack, i)
		case m >= lowThreshold:
			marks[i] = weak
		}
	}

	// Hysteresis: promote weak pixels 8-connected to strong ones.
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x := i % w
		y := i / w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				j := ny*w + nx
				if marks[j] == weak {
					marks[j] = strong
					stack = append(stack, j)
				}
			}
		}
	}

	edges := image.NewGray(image.Rect(0, 0, w, h))
	for i, m := range marks {
		if m == strong {
			edges.Pix[i] = 255
		}
	}

	return edges
}

// edgeDensity is the fraction of edge pixels in a binary edge map.
func edgeDensity(edges *image.Gray) float64 {
	w := edges.Rect.Dx()
	h := edges.Rect.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	count := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if edges.Pix[y*edges.Stride+x] != 0 {
				count++
			}
		}
	}

	return float64(count) / float64(w*h)
}

// otsuThreshold picks the binarization level maximizing between-class
// variance of the intensity histogram.
func otsuThreshold(src *image.Gray) uint8 {
	var hist [256]int
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	total := w * h
	if total == 0 {
		return 0
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hist[src.Pix[y*src.Stride+x]]++
		}
	}

	sum := 0.0
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var best uint8
	var bestVariance float64
	wB, sumB := 0, 0.0

	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}

		sumB += float64(t) * float64(hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		variance := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if variance > bestVariance {
			bestVariance = variance
			best = uint8(t)
		}
	}

	return best
}

// binarizeAbove returns the fraction of pixels strictly above the
// threshold level.
func binarizeAbove(src *image.Gray, level uint8) float64 {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	count := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if src.Pix[y*src.Stride+x] > level {
				count++
			}
		}
	}

	return float64(count) / float64(w*h)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
