// Package report defines the structured JSON summary written after a
// synthesis run: operand sizes, the resulting supervisor's shape, and the
// precheck findings, mirroring the versioned JSON envelope and
// marshal/unmarshal helpers used for simulation output elsewhere in this
// codebase.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/desrw/monosup/precheck"
)

// SchemaVersion identifies the shape of Report for forward compatibility.
const SchemaVersion = "1.0.0"

// Report is the top-level JSON envelope for a synthesis run summary.
type Report struct {
	Version    string            `json:"version"`
	Metadata   Metadata          `json:"metadata"`
	Operands   Operands          `json:"operands"`
	Supervisor Supervisor        `json:"supervisor"`
	Precheck   *precheck.Result  `json:"precheck,omitempty"`
}

// Metadata describes when and how the run executed.
type Metadata struct {
	RunID     string        `json:"runId"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"durationNs"`
	Status    string        `json:"status"` // "ok", "empty", "error"
	Error     string        `json:"error,omitempty"`
}

// Operands summarizes the plant and specification sizes fed to synthesis.
type Operands struct {
	PlantStates         uint64 `json:"plantStates"`
	SpecStates          uint64 `json:"specStates"`
	EventBound          uint   `json:"eventBound"`
	UncontrollableCount uint   `json:"uncontrollableCount"`
}

// Supervisor summarizes the materialised, trimmed supervisor.
type Supervisor struct {
	States       uint64 `json:"states"`
	Transitions  uint64 `json:"transitions"`
	MarkedStates uint64 `json:"markedStates"`
	Empty        bool   `json:"empty"`
}

// WriteJSON writes r to filename as indented JSON.
func WriteJSON(r *Report, filename string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("report: write file: %w", err)
	}
	return nil
}

// ReadJSON reads a Report previously written by WriteJSON.
func ReadJSON(filename string) (*Report, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("report: read file: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("report: unmarshal: %w", err)
	}
	return &r, nil
}

// ToJSON renders r as an indented JSON string.
func ToJSON(r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FromJSON parses a Report from a JSON string.
func FromJSON(s string) (*Report, error) {
	var r Report
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return nil, err
	}
	return &r, nil
}
