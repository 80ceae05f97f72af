package forecast

import "sort"

// treeNode is a CART node. Leaves have left == nil.
type treeNode struct {
	threshold float64
	value     float64
	left      *treeNode
	right     *treeNode
}

type treeRegressor struct {
	root *treeNode
}

func (r *treeRegressor) predict(x float64) float64 {
	n := r.root
	for n.left != nil {
		if x <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

type sample struct {
	x, y float64
}

// fitTree grows a regression tree minimising squared error. Splits fall on
// midpoints between distinct x values.
func fitTree(x, y []float64, opts TreeOptions) *treeRegressor {
	samples := make([]sample, len(x))
	for i := range x {
		samples[i] = sample{x: x[i], y: y[i]}
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].x < samples[j].x })
	return &treeRegressor{root: grow(samples, 0, opts)}
}

func grow(s []sample, depth int, opts TreeOptions) *treeNode {
	mean := 0.0
	for _, p := range s {
		mean += p.y
	}
	mean /= float64(len(s))
	leaf := &treeNode{value: mean}

	if len(s) < 2*opts.MinSamplesLeaf || (opts.MaxDepth > 0 && depth >= opts.MaxDepth) {
		return leaf
	}

	split, ok := bestSplit(s, opts.MinSamplesLeaf)
	if !ok {
		return leaf
	}
	leaf.threshold = (s[split-1].x + s[split].x) / 2
	leaf.left = grow(s[:split], depth+1, opts)
	leaf.right = grow(s[split:], depth+1, opts)
	return leaf
}

// bestSplit returns the index i such that s[:i] and s[i:] give the lowest
// total squared error. s must be sorted by x.
func bestSplit(s []sample, minLeaf int) (int, bool) {
	n := len(s)
	var total, totalSq float64
	for _, p := range s {
		total += p.y
		totalSq += p.y * p.y
	}
	parentSSE := totalSq - total*total/float64(n)
	if parentSSE <= 1e-12 {
		return 0, false
	}

	best, bestSSE := 0, parentSSE
	var leftSum, leftSq float64
	for i := 1; i < n; i++ {
		leftSum += s[i-1].y
		leftSq += s[i-1].y * s[i-1].y
		if s[i-1].x == s[i].x || i < minLeaf || n-i < minLeaf {
			continue
		}
		nl, nr := float64(i), float64(n-i)
		rightSum, rightSq := total-leftSum, totalSq-leftSq
		sse := leftSq - leftSum*leftSum/nl + rightSq - rightSum*rightSum/nr
		if sse < bestSSE-1e-12 {
			best, bestSSE = i, sse
		}
	}
	return best, best > 0
}
