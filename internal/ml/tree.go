package ml

import "sort"

// TreeNode is one node of a regression tree. Fields are exported for
// gob encoding of the trained artifact.
type TreeNode struct {
	IsLeaf    bool
	Value     float64
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
}

// Tree is a CART regression tree fit by minimizing the sum of squared
// errors of each split.
type Tree struct {
	Root *TreeNode
}

type treeParams struct {
	maxDepth        int
	minSamplesSplit int
}

// Predict walks the tree for one feature vector.
func (t *Tree) Predict(x []float64) float64 {
	node := t.Root
	for node != nil && !node.IsLeaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	if node == nil {
		return 0
	}
	return node.Value
}

// fitTree grows a tree over the given row indices.
func fitTree(rows [][]float64, y []float64, indices []int, params treeParams) *Tree {
	return &Tree{Root: growNode(rows, y, indices, 0, params)}
}

func growNode(rows [][]float64, y []float64, indices []int, depth int, params treeParams) *TreeNode {
	mean := meanAt(y, indices)

	if depth >= params.maxDepth || len(indices) < params.minSamplesSplit {
		return &TreeNode{IsLeaf: true, Value: mean}
	}

	feature, threshold, ok := bestSplit(rows, y, indices)
	if !ok {
		return &TreeNode{IsLeaf: true, Value: mean}
	}

	var left, right []int
	for _, i := range indices {
		if rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &TreeNode{IsLeaf: true, Value: mean}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growNode(rows, y, left, depth+1, params),
		Right:     growNode(rows, y, right, depth+1, params),
	}
}

// bestSplit scans every feature for the threshold minimizing the
// post-split sum of squared errors. Candidate thresholds are midpoints
// between consecutive distinct values.
func bestSplit(rows [][]float64, y []float64, indices []int) (int, float64, bool) {
	n := len(indices)
	if n < 2 {
		return 0, 0, false
	}

	width := len(rows[indices[0]])
	bestSSE := nodeSSE(y, indices)
	bestFeature, bestThreshold := -1, 0.0

	order := make([]int, n)
	for feature := 0; feature < width; feature++ {
		copy(order, indices)
		sort.Slice(order, func(a, b int) bool {
			return rows[order[a]][feature] < rows[order[b]][feature]
		})

		// Prefix sums over the sorted order let each split be scored
		// in O(1).
		sumLeft, sumSqLeft := 0.0, 0.0
		sumTotal, sumSqTotal := 0.0, 0.0
		for _, i := range order {
			sumTotal += y[i]
			sumSqTotal += y[i] * y[i]
		}

		for pos := 0; pos < n-1; pos++ {
			v := y[order[pos]]
			sumLeft += v
			sumSqLeft += v * v

			cur := rows[order[pos]][feature]
			next := rows[order[pos+1]][feature]
			if cur == next {
				continue
			}

			nl := float64(pos + 1)
			nr := float64(n - pos - 1)
			sseLeft := sumSqLeft - sumLeft*sumLeft/nl
			sumRight := sumTotal - sumLeft
			sseRight := (sumSqTotal - sumSqLeft) - sumRight*sumRight/nr

			if sse := sseLeft + sseRight; sse < bestSSE-1e-12 {
				bestSSE = sse
				bestFeature = feature
				bestThreshold = (cur + next) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func nodeSSE(y []float64, indices []int) float64 {
	mean := meanAt(y, indices)
	sse := 0.0
	for _, i := range indices {
		d := y[i] - mean
		sse += d * d
	}
	return sse
}

func meanAt(y []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range indices {
		sum += y[i]
	}
	return sum / float64(len(indices))
}
