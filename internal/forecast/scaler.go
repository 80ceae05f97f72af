package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// standardScaler maps values to zero mean and unit population variance.
type standardScaler struct {
	mean float64
	std  float64
}

func fitScaler(y []float64) standardScaler {
	mean, variance := stat.MeanVariance(y, nil)
	std := 1.0
	if n := float64(len(y)); n > 1 {
		// MeanVariance is unbiased; rescale to population variance.
		if pop := variance * (n - 1) / n; pop > 0 {
			std = math.Sqrt(pop)
		}
	}
	return standardScaler{mean: mean, std: std}
}

func (s standardScaler) transform(y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = (v - s.mean) / s.std
	}
	return out
}

func (s standardScaler) inverse(v float64) float64 {
	return v*s.std + s.mean
}
