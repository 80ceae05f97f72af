package forecast

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// polyRegressor evaluates sum(coef[k] * u^k) with u = (x - shift) / scale.
// The affine change of variable spans the same function space as raw powers
// of x and keeps the least squares system well conditioned.
type polyRegressor struct {
	coef  []float64
	shift float64
	scale float64
}

func (r *polyRegressor) predict(x float64) float64 {
	u := (x - r.shift) / r.scale
	v := 0.0
	for k := len(r.coef) - 1; k >= 0; k-- {
		v = v*u + r.coef[k]
	}
	return v
}

// fitPolynomialOLS fits centred powers of u with an unpenalised intercept.
// Short series leave the system underdetermined; the truncated SVD then
// picks the minimum-norm slope terms without shrinking the intercept.
func fitPolynomialOLS(x, y []float64, degree int) (regressor, error) {
	n := len(x)
	shift, scale := basisWindow(x)

	a := mat.NewDense(n, degree, nil)
	for i, xi := range x {
		u := (xi - shift) / scale
		p := 1.0
		for k := 0; k < degree; k++ {
			p *= u
			a.Set(i, k, p)
		}
	}
	means := make([]float64, degree)
	for k := range means {
		col := mat.Col(nil, k, a)
		means[k] = stat.Mean(col, nil)
		for i := range col {
			a.Set(i, k, col[i]-means[k])
		}
	}
	ymean := stat.Mean(y, nil)
	yc := make([]float64, n)
	for i, yi := range y {
		yc[i] = yi - ymean
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, errors.New("least squares: svd did not converge")
	}
	coef := make([]float64, degree+1)
	if rank := svd.Rank(rankTolerance); rank > 0 {
		var w mat.VecDense
		svd.SolveVecTo(&w, mat.NewVecDense(n, yc), rank)
		for k := 0; k < degree; k++ {
			coef[k+1] = w.AtVec(k)
		}
	}

	coef[0] = ymean
	for k := 0; k < degree; k++ {
		coef[0] -= coef[k+1] * means[k]
	}
	return &polyRegressor{coef: coef, shift: shift, scale: scale}, nil
}

// ridgeRegressor evaluates intercept + sum(w[k] * x^(k+1)).
type ridgeRegressor struct {
	w         []float64
	intercept float64
}

func (r *ridgeRegressor) predict(x float64) float64 {
	v := r.intercept
	p := 1.0
	for _, wk := range r.w {
		p *= x
		v += wk * p
	}
	return v
}

// fitRidge minimises |y - b - Xw|^2 + alpha*|w|^2 with an unpenalised
// intercept, solving the centred normal equations by Cholesky.
func fitRidge(x, y []float64, alpha float64, degree int) (regressor, error) {
	n := len(x)
	xc := mat.NewDense(n, degree, nil)
	means := make([]float64, degree)
	for i, xi := range x {
		p := 1.0
		for k := 0; k < degree; k++ {
			p *= xi
			xc.Set(i, k, p)
			means[k] += p
		}
	}
	for k := range means {
		means[k] /= float64(n)
	}
	for i := 0; i < n; i++ {
		for k := 0; k < degree; k++ {
			xc.Set(i, k, xc.At(i, k)-means[k])
		}
	}

	yMean := stat.Mean(y, nil)
	yc := mat.NewVecDense(n, nil)
	for i, yi := range y {
		yc.SetVec(i, yi-yMean)
	}

	var gram mat.SymDense
	gram.SymOuterK(1, xc.T())
	for k := 0; k < degree; k++ {
		gram.SetSym(k, k, gram.At(k, k)+alpha)
	}

	var rhs mat.VecDense
	rhs.MulVec(xc.T(), yc)

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return nil, errors.New("ridge normal equations are not positive definite")
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, &rhs); err != nil && !isCondition(err) {
		return nil, fmt.Errorf("ridge solve: %w", err)
	}

	coef := make([]float64, degree)
	intercept := yMean
	for k := range coef {
		coef[k] = w.AtVec(k)
		intercept -= means[k] * coef[k]
	}
	return &ridgeRegressor{w: coef, intercept: intercept}, nil
}

// rankTolerance drops singular values below this fraction of the largest.
const rankTolerance = 1e-10

func basisWindow(x []float64) (shift, scale float64) {
	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	shift = (lo + hi) / 2
	scale = (hi - lo) / 2
	if scale == 0 {
		scale = 1
	}
	return shift, scale
}

// isCondition reports an ill-conditioning warning from gonum. The solution is
// still written; non-finite output is caught when predicting.
func isCondition(err error) bool {
	var cond mat.Condition
	return errors.As(err, &cond)
}
