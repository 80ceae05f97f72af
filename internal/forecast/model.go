package forecast

import "strings"

// ModelType is the selector tag of a fitting strategy.
type ModelType string

const (
	ModelLinear       ModelType = "linear"
	ModelPolynomial   ModelType = "polynomial"
	ModelRidge        ModelType = "ridge"
	ModelSVR          ModelType = "svr"
	ModelRandomForest ModelType = "random_forest"
	ModelDecisionTree ModelType = "decision_tree"
)

var allModels = []ModelType{
	ModelLinear,
	ModelPolynomial,
	ModelRidge,
	ModelSVR,
	ModelRandomForest,
	ModelDecisionTree,
}

// AllModels returns every model the engine can build, in a stable order.
func AllModels() []ModelType {
	out := make([]ModelType, len(allModels))
	copy(out, allModels)
	return out
}

// ParseModelType normalises s (trim, lowercase) and reports whether it names a known model.
func ParseModelType(s string) (ModelType, bool) {
	m := ModelType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range allModels {
		if m == known {
			return m, true
		}
	}
	return m, false
}

func (m ModelType) String() string { return string(m) }

func joinModels(models []ModelType) string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
