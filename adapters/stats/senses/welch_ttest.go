package senses

import (
	"fmt"
	"math"
	"sort"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// EventComparison is the Expert vs Novice test for one event interval.
type EventComparison struct {
	SenseResult `yaml:",inline"`

	Event      string  `yaml:"event"`
	NExpert    int     `yaml:"n_expert"`
	NNovice    int     `yaml:"n_novice"`
	ExpertMean float64 `yaml:"expert_mean"`
	NoviceMean float64 `yaml:"novice_mean"`
	TStatistic float64 `yaml:"t_statistic"`
	DF         float64 `yaml:"df"`
}

// WelchTTestSense detects significant differences between group means
type WelchTTestSense struct{}

// NewWelchTTestSense creates a new Welch's t-test sense
func NewWelchTTestSense() *WelchTTestSense {
	return &WelchTTestSense{}
}

// Name returns the sense name
func (s *WelchTTestSense) Name() string {
	return "welch_ttest"
}

// CompareEvents runs one Expert vs Novice test per event, using each
// subject's mean over the event as the observation.
func (s *WelchTTestSense) CompareEvents(tagged []signal.TaggedRecord) []EventComparison {
	events, means, groups := SubjectEventMeans(tagged)

	out := make([]EventComparison, 0, len(events))
	for _, event := range events {
		expert, novice := splitGroups(means[event], groups)
		out = append(out, s.Compare(event, expert, novice))
	}
	return out
}

// Compare performs Welch's t-test between expert and novice observations
func (s *WelchTTestSense) Compare(event string, expert, novice []float64) EventComparison {
	cmp := EventComparison{
		Event:   event,
		NExpert: len(expert),
		NNovice: len(novice),
	}
	if len(expert) > 0 {
		cmp.ExpertMean = stat.Mean(expert, nil)
	}
	if len(novice) > 0 {
		cmp.NoviceMean = stat.Mean(novice, nil)
	}

	if len(expert) < 2 || len(novice) < 2 {
		cmp.SenseResult = SenseResult{
			SenseName:   s.Name(),
			PValue:      1.0,
			Signal:      "weak",
			Description: fmt.Sprintf("Insufficient subjects for %s (expert=%d, novice=%d)", event, len(expert), len(novice)),
		}
		return cmp
	}

	tStat, df, pValue, effectSize := computeWelchTTest(expert, novice)
	cmp.TStatistic = tStat
	cmp.DF = df
	cmp.SenseResult = SenseResult{
		SenseName:   s.Name(),
		EffectSize:  effectSize,
		PValue:      pValue,
		Confidence:  calculateConfidence(pValue),
		Signal:      classifySignal(effectSize),
		Description: describe(event, cmp.ExpertMean, cmp.NoviceMean, tStat, df, pValue),
	}
	return cmp
}

// computeWelchTTest returns t, Welch-Satterthwaite df, two-sided p and
// Cohen's d with pooled standard deviation.
func computeWelchTTest(group1, group2 []float64) (float64, float64, float64, float64) {
	n1 := float64(len(group1))
	n2 := float64(len(group2))

	mean1, var1 := stat.MeanVariance(group1, nil)
	mean2, var2 := stat.MeanVariance(group2, nil)

	se2 := var1/n1 + var2/n2
	if se2 == 0 {
		if mean1 == mean2 {
			return 0, n1 + n2 - 2, 1.0, 0
		}
		return math.Copysign(math.Inf(1), mean1-mean2), n1 + n2 - 2, 0, math.Copysign(math.Inf(1), mean1-mean2)
	}

	tStat := (mean1 - mean2) / math.Sqrt(se2)
	df := se2 * se2 / (math.Pow(var1/n1, 2)/(n1-1) + math.Pow(var2/n2, 2)/(n2-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pValue := 2 * (1 - dist.CDF(math.Abs(tStat)))

	pooledSD := math.Sqrt(((n1-1)*var1 + (n2-1)*var2) / (n1 + n2 - 2))
	effectSize := (mean1 - mean2) / pooledSD

	return tStat, df, pValue, effectSize
}

func splitGroups(means map[signal.SubjectID]float64, groups map[signal.SubjectID]signal.Group) ([]float64, []float64) {
	subjects := make([]string, 0, len(means))
	for id := range means {
		subjects = append(subjects, string(id))
	}
	sort.Strings(subjects)

	var expert, novice []float64
	for _, id := range subjects {
		v := means[signal.SubjectID(id)]
		if groups[signal.SubjectID(id)] == signal.GroupExpert {
			expert = append(expert, v)
		} else {
			novice = append(novice, v)
		}
	}
	return expert, novice
}

func describe(event string, expertMean, noviceMean, t, df, p float64) string {
	direction := "higher"
	if expertMean < noviceMean {
		direction = "lower"
	}
	return fmt.Sprintf("%s: experts %s than novices (%.3f vs %.3f), t(%.1f)=%.2f, p=%.4f",
		event, direction, expertMean, noviceMean, df, t, p)
}
