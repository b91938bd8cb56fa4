package senses

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
)

// SenseResult represents the output of one group comparison
type SenseResult struct {
	SenseName   string  `json:"sense_name" yaml:"sense_name"`
	EffectSize  float64 `json:"effect_size" yaml:"effect_size"`
	PValue      float64 `json:"p_value" yaml:"p_value"`
	Confidence  float64 `json:"confidence" yaml:"confidence"`
	Signal      string  `json:"signal" yaml:"signal"`
	Description string  `json:"description" yaml:"description"`
}

// SubjectEventMeans averages each subject's non-missing values per event.
// Events are returned in order of first appearance.
func SubjectEventMeans(tagged []signal.TaggedRecord) ([]string, map[string]map[signal.SubjectID]float64, map[signal.SubjectID]signal.Group) {
	var events []string
	values := make(map[string]map[signal.SubjectID][]float64)
	groups := make(map[signal.SubjectID]signal.Group)

	for _, r := range tagged {
		bySubject, ok := values[r.Event]
		if !ok {
			events = append(events, r.Event)
			bySubject = make(map[signal.SubjectID][]float64)
			values[r.Event] = bySubject
		}
		groups[r.Subject] = r.Group
		if r.Missing() {
			continue
		}
		bySubject[r.Subject] = append(bySubject[r.Subject], r.Value)
	}

	means := make(map[string]map[signal.SubjectID]float64, len(events))
	for event, bySubject := range values {
		means[event] = make(map[signal.SubjectID]float64, len(bySubject))
		for subject, xs := range bySubject {
			means[event][subject] = stat.Mean(xs, nil)
		}
	}
	return events, means, groups
}

// classifySignal maps Cohen's d onto a coarse label
func classifySignal(effectSize float64) string {
	absEffect := math.Abs(effectSize)
	if absEffect < 0.2 {
		return "weak"
	} else if absEffect < 0.5 {
		return "moderate"
	} else if absEffect < 0.8 {
		return "strong"
	}
	return "very_strong"
}

// calculateConfidence converts p-value to confidence score
func calculateConfidence(pValue float64) float64 {
	if math.IsNaN(pValue) || pValue >= 1.0 {
		return 0.0
	}
	if pValue <= 0.001 {
		return 0.99
	}
	return math.Min(0.99, 1.0-pValue)
}
