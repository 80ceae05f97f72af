package forecast

import "math/rand"

type forestRegressor struct {
	trees []*treeRegressor
}

func (r *forestRegressor) predict(x float64) float64 {
	sum := 0.0
	for _, t := range r.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(r.trees))
}

// fitForest bags CART trees over bootstrap resamples. The source is local to
// the call, so a fixed seed yields the same forest for the same series.
func fitForest(x, y []float64, tree TreeOptions, opts ForestOptions) *forestRegressor {
	rng := rand.New(rand.NewSource(opts.Seed))
	n := len(x)
	bx := make([]float64, n)
	by := make([]float64, n)

	trees := make([]*treeRegressor, opts.Trees)
	for t := range trees {
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			bx[i], by[i] = x[j], y[j]
		}
		trees[t] = fitTree(bx, by, tree)
	}
	return &forestRegressor{trees: trees}
}
