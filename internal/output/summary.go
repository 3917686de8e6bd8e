package output

import (
	"fmt"
	"path/filepath"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"bin2ml/internal/diag"
)

// Summary is the per-run record written to summary.json.
type Summary struct {
	RunID      string      `json:"run_id"`
	Command    string      `json:"command"`
	Started    time.Time   `json:"started"`
	Elapsed    string      `json:"elapsed"`
	Units      int         `json:"units"`
	FatalUnits int         `json:"fatal_units"`
	EmptyUnits int         `json:"empty_units"`
	Succeeded  int         `json:"succeeded"`
	Skipped    int         `json:"skipped"`
	Filtered   int         `json:"filtered"`
	Duplicates int         `json:"duplicates,omitempty"`
	Artifacts  int         `json:"artifacts"`
	Failed     bool        `json:"failed"`
	Diags      []diag.Diag `json:"diagnostics"`
}

// NewSummary starts a summary with a fresh run id.
func NewSummary(command string) (*Summary, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("output: run id: %w", err)
	}
	return &Summary{RunID: id, Command: command, Started: time.Now().UTC()}, nil
}

// WriteSummary writes s to <dir>/summary.json.
func WriteSummary(dir string, s *Summary) error {
	if s.Diags == nil {
		s.Diags = []diag.Diag{}
	}
	s.Elapsed = time.Since(s.Started).Round(time.Millisecond).String()
	return writeJSON(filepath.Join(dir, "summary.json"), s)
}
