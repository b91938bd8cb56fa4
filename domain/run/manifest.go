package run

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"

	"gopkg.in/yaml.v3"
)

// SkipEntry is the serializable form of a skipped subject or file
type SkipEntry struct {
	Subject string `yaml:"subject" json:"subject"`
	Reason  string `yaml:"reason" json:"reason"`
	Detail  string `yaml:"detail,omitempty" json:"detail,omitempty"`
}

// RunManifest records what one batch invocation read, wrote and excluded.
// It is written next to the outputs so a run can be reproduced.
type RunManifest struct {
	RunID      core.RunID             `yaml:"run_id" json:"run_id"`
	Command    string                 `yaml:"command" json:"command"`
	ConfigHash core.Hash              `yaml:"config_hash" json:"config_hash"`
	Params     map[string]interface{} `yaml:"params,omitempty" json:"params,omitempty"`
	Inputs     []string               `yaml:"inputs" json:"inputs"`
	Outputs    []string               `yaml:"outputs" json:"outputs"`
	Included   []string               `yaml:"included,omitempty" json:"included,omitempty"`
	Skipped    []SkipEntry            `yaml:"skipped,omitempty" json:"skipped,omitempty"`
	Warnings   []string               `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	CreatedAt  time.Time              `yaml:"created_at" json:"created_at"`
}

// NewRunManifest starts a manifest for a command with its effective parameters
func NewRunManifest(command string, params map[string]interface{}) *RunManifest {
	return &RunManifest{
		RunID:      core.NewRunID(),
		Command:    command,
		ConfigHash: core.ComputeParamsHash(params),
		Params:     params,
		CreatedAt:  time.Now().UTC(),
	}
}

// OptionParams flattens resampling options for hashing
func OptionParams(opts signal.Options) map[string]interface{} {
	return map[string]interface{}{
		"points_per_segment": opts.PointsPerSegment,
		"baseline_lo":        opts.BaselineWindow.Lo,
		"baseline_hi":        opts.BaselineWindow.Hi,
		"expert_prefix":      opts.ExpertPrefix,
		"novice_prefix":      opts.NovicePrefix,
		"expert_count":       opts.SubjectCounts.Expert,
		"novice_count":       opts.SubjectCounts.Novice,
		"index_base":         opts.IndexBase,
		"pairing":            string(opts.Pairing),
	}
}

func (m *RunManifest) AddInput(path string)  { m.Inputs = append(m.Inputs, path) }
func (m *RunManifest) AddOutput(path string) { m.Outputs = append(m.Outputs, path) }

// RecordSubjects copies the included roster and skip reports
func (m *RunManifest) RecordSubjects(included []signal.SubjectID, skipped []signal.SkippedSubject) {
	for _, s := range included {
		m.Included = append(m.Included, s.String())
	}
	for _, s := range skipped {
		entry := SkipEntry{Subject: s.Subject.String(), Reason: s.Reason}
		if s.Err != nil {
			entry.Detail = s.Err.Error()
		}
		m.Skipped = append(m.Skipped, entry)
	}
}

// Warn appends a free-form warning
func (m *RunManifest) Warn(format string, args ...interface{}) {
	m.Warnings = append(m.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks if the manifest is complete
func (m *RunManifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return fmt.Errorf("run_manifest: run_id cannot be empty")
	}
	if m.Command == "" {
		return fmt.Errorf("run_manifest: command cannot be empty")
	}
	if m.ConfigHash.IsEmpty() {
		return fmt.Errorf("run_manifest: config_hash cannot be empty")
	}
	if len(m.Inputs) == 0 {
		return fmt.Errorf("run_manifest: at least one input is required")
	}
	return nil
}

// Encode writes the manifest as YAML
func (m *RunManifest) Encode(w io.Writer) error {
	if err := m.Validate(); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}

// WriteFile writes the manifest to <dir>/manifest-<runID>.yaml and returns the path
func (m *RunManifest) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("manifest-%s.yaml", m.RunID))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := m.Encode(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// Decode reads a YAML manifest
func Decode(r io.Reader) (*RunManifest, error) {
	var m RunManifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}
