package testkit

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"path/filepath"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/excel"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
)

// SessionGeneratorConfig configures the synthetic driving session generator
type SessionGeneratorConfig struct {
	Experts       int     `json:"experts"`
	Novices       int     `json:"novices"`
	Segments      int     `json:"segments"`
	MinSegmentLen int     `json:"min_segment_len"`
	MaxSegmentLen int     `json:"max_segment_len"`
	ExpertEffect  float64 `json:"expert_effect"` // arousal rise per segment for experts
	NoviceEffect  float64 `json:"novice_effect"`
	Noise         float64 `json:"noise"`
	IndexBase     int     `json:"index_base"`
	Seed          int64   `json:"seed"`
}

// DefaultSessionConfig returns a small two-group session
func DefaultSessionConfig() SessionGeneratorConfig {
	return SessionGeneratorConfig{
		Experts:       4,
		Novices:       4,
		Segments:      3,
		MinSegmentLen: 20,
		MaxSegmentLen: 60,
		ExpertEffect:  0.2,
		NoviceEffect:  1.0,
		Noise:         0.05,
		IndexBase:     1,
		Seed:          42,
	}
}

// Session is a generated signal table and its boundary table
type Session struct {
	Signals    *signal.Table
	Boundaries *signal.Table
	Subjects   []signal.SubjectID
}

// SessionGenerator produces EDA-like recordings where every subject drives
// the same scenario segments at their own pace
type SessionGenerator struct {
	config SessionGeneratorConfig
	rng    *rand.Rand
}

// NewSessionGenerator creates a new session generator
func NewSessionGenerator(config SessionGeneratorConfig) *SessionGenerator {
	return &SessionGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds consecutive boundaries (segment k spans rows k and k+1)
// and a signal with a tonic level, a per-segment rise and noise
func (g *SessionGenerator) Generate() *Session {
	var experts, novices []signal.SubjectID
	for i := 1; i <= g.config.Experts; i++ {
		experts = append(experts, signal.SubjectID(fmt.Sprintf("exper%d", i)))
	}
	for i := 1; i <= g.config.Novices; i++ {
		novices = append(novices, signal.SubjectID(fmt.Sprintf("novice%d", i)))
	}
	subjects := append(experts, novices...)

	headers := make([]string, len(subjects))
	for i, s := range subjects {
		headers[i] = s.String()
	}
	signals := signal.NewTable("EDA", headers)
	boundaries := signal.NewTable("Time", headers)

	for i, s := range subjects {
		effect := g.config.NoviceEffect
		if i < len(experts) {
			effect = g.config.ExpertEffect
		}

		bounds := make([]float64, 0, g.config.Segments+1)
		pos := g.rng.Intn(10)
		bounds = append(bounds, float64(pos+g.config.IndexBase))
		for k := 0; k < g.config.Segments; k++ {
			span := g.config.MinSegmentLen
			if g.config.MaxSegmentLen > g.config.MinSegmentLen {
				span += g.rng.Intn(g.config.MaxSegmentLen - g.config.MinSegmentLen + 1)
			}
			pos += span - 1
			bounds = append(bounds, float64(pos+g.config.IndexBase))
		}
		length := pos + 1 + g.rng.Intn(10)

		tonic := 2 + g.rng.Float64()
		values := make([]float64, length)
		segment := 0
		for t := range values {
			for segment < g.config.Segments && t > int(bounds[segment+1])-g.config.IndexBase {
				segment++
			}
			values[t] = tonic + effect*float64(segment) + g.config.Noise*g.rng.NormFloat64()
		}
		signals.Columns[s.String()] = values
		boundaries.Columns[s.String()] = bounds
	}

	padColumns(signals)
	return &Session{Signals: signals, Boundaries: boundaries, Subjects: subjects}
}

// WriteCSV writes EDA.csv and Time.csv into dir, leaving short columns blank
func (s *Session) WriteCSV(dir string) (signalsPath, boundariesPath string, err error) {
	w := excel.NewPanelWriter(excel.DefaultExcelConfig())
	signalsPath = filepath.Join(dir, "EDA.csv")
	boundariesPath = filepath.Join(dir, "Time.csv")
	if err := excel.WriteFile(signalsPath, func(out io.Writer) error {
		return w.WriteRagged(out, s.Signals.Headers, s.Signals.Columns)
	}); err != nil {
		return "", "", err
	}
	if err := excel.WriteFile(boundariesPath, func(out io.Writer) error {
		return w.WriteRagged(out, s.Boundaries.Headers, s.Boundaries.Columns)
	}); err != nil {
		return "", "", err
	}
	return signalsPath, boundariesPath, nil
}

// padColumns extends every column with NaN to the table's row count
func padColumns(t *signal.Table) {
	n := t.Rows()
	for name, col := range t.Columns {
		for len(col) < n {
			col = append(col, math.NaN())
		}
		t.Columns[name] = col
	}
}
