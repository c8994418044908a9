package cbr

import "github.com/raphaelgruber/mixmyroutine/internal/models"

// Weights are the relative importance of each profile feature.
type Weights struct {
	SkinType    float64 `json:"skin_type"`
	Concerns    float64 `json:"concerns"`
	Sensitivity float64 `json:"sensitivity"`
}

// DefaultWeights returns the standard feature weights.
func DefaultWeights() Weights {
	return Weights{SkinType: 0.4, Concerns: 0.4, Sensitivity: 0.2}
}

func (w Weights) total() float64 {
	return w.SkinType + w.Concerns + w.Sensitivity
}

// Similarity scores two profiles in [0,1]: exact skin-type match, Jaccard
// overlap of concerns and linear sensitivity proximity, combined by w and
// normalized by the weight total.
func Similarity(a, b models.SkinProfile, w Weights) float64 {
	total := w.total()
	if total <= 0 {
		return 0
	}

	var score float64
	if a.SkinType == b.SkinType {
		score += w.SkinType
	}
	score += w.Concerns * Jaccard(a.Concerns, b.Concerns)
	score += w.Sensitivity * SensitivityProximity(a.Sensitivity, b.Sensitivity)

	return min(max(score/total, 0), 1)
}

// Jaccard returns |a ∩ b| / |a ∪ b|. Two empty sets are identical (1).
func Jaccard(a, b []models.Concern) float64 {
	setA := make(map[models.Concern]struct{}, len(a))
	for _, c := range a {
		setA[c] = struct{}{}
	}
	setB := make(map[models.Concern]struct{}, len(b))
	for _, c := range b {
		setB[c] = struct{}{}
	}
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}

	inter := 0
	for c := range setA {
		if _, ok := setB[c]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

// SensitivityProximity maps the distance between two sensitivity levels
// onto [0,1], 1 being equal. Levels are clamped into the valid range.
func SensitivityProximity(a, b int) float64 {
	span := models.MaxSensitivity - models.MinSensitivity
	a = min(max(a, models.MinSensitivity), models.MaxSensitivity)
	b = min(max(b, models.MinSensitivity), models.MaxSensitivity)
	d := a - b
	if d < 0 {
		d = -d
	}
	return 1 - float64(d)/float64(span)
}
