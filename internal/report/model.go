// Package report implements the transcript-to-report pipeline: report
// generation, structured extraction, persistence, and the fan-out over
// multiple reports per transcript.
package report

import (
	"encoding/json"
	"time"

	"github.com/skillsenselab/osce-insight/internal/extract"
)

// Report is one persisted evaluation of an encounter transcript.
type Report struct {
	// ID is the storage identity of the report.
	ID string `json:"id"`
	// CreatedAt is the UTC persistence time.
	CreatedAt time.Time `json:"created_at"`
	// Transcript is the formatted encounter transcript the report was
	// generated from.
	Transcript string `json:"transcript"`
	// Report is the canonical evaluation record.
	Report json.RawMessage `json:"report"`
	// SourceFile is the originating audio object key, when known.
	SourceFile string `json:"source_file,omitempty"`
	// ModelID identifies the model that produced the evaluation.
	ModelID string `json:"model_id,omitempty"`
}

// Evaluation returns the parsed evaluation record.
func (r *Report) Evaluation() (*extract.Evaluation, error) {
	_, eval, err := extract.Extract(string(r.Report))
	return eval, err
}

// Summary is the listing view of a persisted report.
type Summary struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	SourceFile string    `json:"source_file,omitempty"`
}
