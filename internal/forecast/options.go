package forecast

import (
	"errors"
	"fmt"
)

// HardMaxPoints caps the series length even with bounds disabled. SVR keeps
// an n*n kernel in memory.
const HardMaxPoints = 2000

// Options configures an Engine. Use DefaultOptions and override fields.
type Options struct {
	MinPoints     int
	MaxPoints     int
	MaxHorizon    int
	EnforceBounds bool
	// Models lists the enabled selector tags. Empty means all.
	Models []ModelType

	PolynomialDegree int
	RidgeAlpha       float64
	RidgeDegree      int

	SVR    SVROptions
	Tree   TreeOptions
	Forest ForestOptions
}

// SVROptions holds epsilon-SVR hyperparameters for the RBF kernel.
type SVROptions struct {
	C         float64
	Gamma     float64
	Epsilon   float64
	MaxIter   int
	Tolerance float64
}

// TreeOptions controls CART growth. MaxDepth 0 means unlimited.
type TreeOptions struct {
	MaxDepth       int
	MinSamplesLeaf int
}

// ForestOptions controls bagging.
type ForestOptions struct {
	Trees int
	Seed  int64
}

// DefaultOptions returns the production limits and hyperparameters.
func DefaultOptions() Options {
	return Options{
		MinPoints:        5,
		MaxPoints:        365,
		MaxHorizon:       183,
		EnforceBounds:    true,
		Models:           AllModels(),
		PolynomialDegree: 2,
		RidgeAlpha:       1.0,
		RidgeDegree:      1,
		SVR: SVROptions{
			C:         100,
			Gamma:     0.1,
			Epsilon:   0.1,
			MaxIter:   1000,
			Tolerance: 1e-6,
		},
		Tree: TreeOptions{
			MaxDepth:       0,
			MinSamplesLeaf: 1,
		},
		Forest: ForestOptions{
			Trees: 100,
			Seed:  42,
		},
	}
}

func (o Options) validate() error {
	if o.MinPoints < 1 {
		return errors.New("min points must be at least 1")
	}
	if o.MaxPoints < o.MinPoints {
		return fmt.Errorf("max points %d below min points %d", o.MaxPoints, o.MinPoints)
	}
	if o.MaxPoints > HardMaxPoints {
		return fmt.Errorf("max points %d above hard limit %d", o.MaxPoints, HardMaxPoints)
	}
	if o.MaxHorizon < 1 {
		return errors.New("max horizon must be positive")
	}
	if o.PolynomialDegree < 1 || o.RidgeDegree < 1 {
		return errors.New("polynomial degrees must be at least 1")
	}
	if o.RidgeAlpha < 0 {
		return errors.New("ridge alpha must not be negative")
	}
	if o.SVR.C <= 0 || o.SVR.Gamma <= 0 || o.SVR.Epsilon < 0 {
		return errors.New("svr requires C > 0, gamma > 0 and epsilon >= 0")
	}
	if o.SVR.MaxIter < 1 {
		return errors.New("svr max iterations must be positive")
	}
	if o.Tree.MaxDepth < 0 || o.Tree.MinSamplesLeaf < 1 {
		return errors.New("tree requires max depth >= 0 and min samples leaf >= 1")
	}
	if o.Forest.Trees < 1 {
		return errors.New("forest requires at least one tree")
	}
	for _, m := range o.Models {
		if _, ok := ParseModelType(string(m)); !ok {
			return fmt.Errorf("unknown model %q", m)
		}
	}
	return nil
}
