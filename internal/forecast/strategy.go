package forecast

// Strategy is one curve-fitting method over day indices. The unexported fit
// method keeps the set closed to this package.
type Strategy interface {
	Type() ModelType
	// RequiresScaling reports whether targets are standardised before fit.
	RequiresScaling() bool
	fit(x, y []float64) (regressor, error)
}

type regressor interface {
	predict(x float64) float64
}

type linearStrategy struct{}

func (linearStrategy) Type() ModelType       { return ModelLinear }
func (linearStrategy) RequiresScaling() bool { return false }
func (linearStrategy) fit(x, y []float64) (regressor, error) {
	return fitPolynomialOLS(x, y, 1)
}

type polynomialStrategy struct {
	degree int
}

func (polynomialStrategy) Type() ModelType       { return ModelPolynomial }
func (polynomialStrategy) RequiresScaling() bool { return false }
func (s polynomialStrategy) fit(x, y []float64) (regressor, error) {
	return fitPolynomialOLS(x, y, s.degree)
}

type ridgeStrategy struct {
	alpha  float64
	degree int
}

func (ridgeStrategy) Type() ModelType       { return ModelRidge }
func (ridgeStrategy) RequiresScaling() bool { return false }
func (s ridgeStrategy) fit(x, y []float64) (regressor, error) {
	return fitRidge(x, y, s.alpha, s.degree)
}

type svrStrategy struct {
	opts SVROptions
}

func (svrStrategy) Type() ModelType       { return ModelSVR }
func (svrStrategy) RequiresScaling() bool { return true }
func (s svrStrategy) fit(x, y []float64) (regressor, error) {
	return fitSVR(x, y, s.opts)
}

type treeStrategy struct {
	opts TreeOptions
}

func (treeStrategy) Type() ModelType       { return ModelDecisionTree }
func (treeStrategy) RequiresScaling() bool { return false }
func (s treeStrategy) fit(x, y []float64) (regressor, error) {
	return fitTree(x, y, s.opts), nil
}

type forestStrategy struct {
	tree   TreeOptions
	forest ForestOptions
}

func (forestStrategy) Type() ModelType       { return ModelRandomForest }
func (forestStrategy) RequiresScaling() bool { return false }
func (s forestStrategy) fit(x, y []float64) (regressor, error) {
	return fitForest(x, y, s.tree, s.forest), nil
}

// newStrategy builds the strategy for m from opts. m must be a known model.
func newStrategy(m ModelType, opts Options) Strategy {
	switch m {
	case ModelLinear:
		return linearStrategy{}
	case ModelPolynomial:
		return polynomialStrategy{degree: opts.PolynomialDegree}
	case ModelRidge:
		return ridgeStrategy{alpha: opts.RidgeAlpha, degree: opts.RidgeDegree}
	case ModelSVR:
		return svrStrategy{opts: opts.SVR}
	case ModelDecisionTree:
		return treeStrategy{opts: opts.Tree}
	case ModelRandomForest:
		return forestStrategy{tree: opts.Tree, forest: opts.Forest}
	}
	return nil
}
