package vision

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"sort"

	xdraw "golang.org/x/image/draw"
)

const (
	colorClusters  = 3
	colorSampleDim = 64
	kmeansMaxIters = 20
)

// DominantColors clusters the frame's pixels into k=3 groups and
// returns the cluster centroids as lowercase hex strings, sorted for a
// stable output. Clustering is seeded so repeated runs over the same
// frame agree.
func DominantColors(img image.Image, seed int64) []string {
	sample := downscale(img, colorSampleDim)

	pixels := make([][3]float64, 0, sample.Rect.Dx()*sample.Rect.Dy())
	for y := 0; y < sample.Rect.Dy(); y++ {
		for x := 0; x < sample.Rect.Dx(); x++ {
			i := y*sample.Stride + x*4
			pixels = append(pixels, [3]float64{
				float64(sample.Pix[i]),
				float64(sample.Pix[i+1]),
				float64(sample.Pix[i+2]),
			})
		}
	}

	centroids := kmeans(pixels, colorClusters, seed)

	colors := make([]string, 0, len(centroids))
	for _, c := range centroids {
		colors = append(colors, fmt.Sprintf("#%02x%02x%02x",
			uint8(clamp(int(c[0]), 0, 255)),
			uint8(clamp(int(c[1]), 0, 255)),
			uint8(clamp(int(c[2]), 0, 255))))
	}
	sort.Strings(colors)

	return colors
}

// downscale shrinks the frame so clustering stays cheap on
// high-resolution frames.
func downscale(img image.Image, maxDim int) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxDim || h > maxDim {
		if w >= h {
			h = h * maxDim / w
			w = maxDim
		} else {
			w = w * maxDim / h
			h = maxDim
		}
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

// kmeans runs Lloyd's algorithm with seeded random initialization.
func kmeans(pixels [][3]float64, k int, seed int64) [][3]float64 {
	if len(pixels) == 0 {
		return nil
	}
	if len(pixels) <= k {
		out := make([][3]float64, len(pixels))
		copy(out, pixels)
		return out
	}

	rng := rand.New(rand.NewSource(seed))
	centroids := make([][3]float64, k)
	for i := range centroids {
		centroids[i] = pixels[rng.Intn(len(pixels))]
	}

	assignments := make([]int, len(pixels))
	for iter := 0; iter < kmeansMaxIters; iter++ {
		changed := false
		for i, p := range pixels {
			best, bestDist := 0, math.MaxFloat64
			for j, c := range centroids {
				d := sqDist(p, c)
				if d < bestDist {
					best, bestDist = j, d
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		sums := make([][3]float64, k)
		counts := make([]int, k)
		for i, p := range pixels {
			a := assignments[i]
			sums[a][0] += p[0]
			sums[a][1] += p[1]
			sums[a][2] += p[2]
			counts[a]++
		}
		for j := range centroids {
			if counts[j] == 0 {
				// Re-seed an empty cluster deterministically.
				centroids[j] = pixels[rng.Intn(len(pixels))]
				continue
			}
			centroids[j] = [3]float64{
				sums[j][0] / float64(counts[j]),
				sums[j][1] / float64(counts[j]),
				sums[j][2] / float64(counts[j]),
			}
		}

		if !changed {
			break
		}
	}

	return centroids
}

func sqDist(a, b [3]float64) float64 {
	d0 := a[0] - b[0]
	d1 := a[1] - b[1]
	d2 := a[2] - b[2]
	return d0*d0 + d1*d1 + d2*d2
}
