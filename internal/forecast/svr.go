package forecast

import (
	"errors"
	"math"
)

// svrRegressor is an epsilon-SVR with an RBF kernel. The bias is absorbed
// into the kernel as K(a, b) + 1, so prediction is sum(beta_i * K'(x_i, x)).
type svrRegressor struct {
	support []float64
	beta    []float64
	gamma   float64
}

func (r *svrRegressor) predict(x float64) float64 {
	v := 0.0
	for i, xi := range r.support {
		v += r.beta[i] * (rbf(r.gamma, xi, x) + 1)
	}
	return v
}

func rbf(gamma, a, b float64) float64 {
	d := a - b
	return math.Exp(-gamma * d * d)
}

// fitSVR solves the dual
//
//	min_beta 1/2 beta'K'beta - y'beta + eps*|beta|_1,  -C <= beta_i <= C
//
// by cyclic coordinate descent. Each coordinate has the closed form
// clip(soft(-g_i, eps) / K'_ii, -C, C) with g_i the gradient excluding i.
func fitSVR(x, y []float64, opts SVROptions) (regressor, error) {
	n := len(x)
	k := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := rbf(opts.Gamma, x[i], x[j]) + 1
			k[i*n+j] = v
			k[j*n+i] = v
		}
	}

	beta := make([]float64, n)
	// f = K' * beta, kept in sync with every coordinate move.
	f := make([]float64, n)

	for iter := 0; iter < opts.MaxIter; iter++ {
		maxDelta := 0.0
		for i := 0; i < n; i++ {
			kii := k[i*n+i]
			g := f[i] - kii*beta[i] - y[i]
			next := clamp(softThreshold(-g, opts.Epsilon)/kii, -opts.C, opts.C)
			delta := next - beta[i]
			if delta == 0 {
				continue
			}
			beta[i] = next
			row := k[i*n : (i+1)*n]
			for j := range f {
				f[j] += delta * row[j]
			}
			if d := math.Abs(delta); d > maxDelta {
				maxDelta = d
			}
		}
		if maxDelta < opts.Tolerance {
			break
		}
	}

	for _, b := range beta {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return nil, errors.New("svr dual diverged")
		}
	}

	support := make([]float64, 0, n)
	weights := make([]float64, 0, n)
	for i, b := range beta {
		if b != 0 {
			support = append(support, x[i])
			weights = append(weights, b)
		}
	}
	return &svrRegressor{support: support, beta: weights, gamma: opts.Gamma}, nil
}

func softThreshold(v, eps float64) float64 {
	switch {
	case v > eps:
		return v - eps
	case v < -eps:
		return v + eps
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
