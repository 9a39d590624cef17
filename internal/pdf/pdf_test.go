package pdf

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/skillsenselab/osce-insight/internal/report"
)

func testReport(record string) *report.Report {
	return &report.Report{
		ID:         "exam-report",
		CreatedAt:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Transcript: "[00:00:01] Student: Hello",
		Report:     json.RawMessage(record),
		SourceFile: "exam.mp3",
		ModelID:    "test-model",
	}
}

func TestRender(t *testing.T) {
	record := `{
		"summary": "Solid history taking, examination incomplete.",
		"checklist": [
			{"item": "Introduced self", "status": "Yes", "evidence": "Hello, I'm a medical student.", "timestamp": "00:00:01"},
			{"item": "Washed hands", "status": "No"},
			{"item": "Explored patient concerns", "status": "Not Sure", "evidence": "Partial exploration of presenting complaint."}
		]
	}`

	out, err := Render(testReport(record))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not start with PDF magic, got %q", out[:min(8, len(out))])
	}
	if len(out) < 1000 {
		t.Errorf("output suspiciously small: %d bytes", len(out))
	}
}

func TestRenderEmptyChecklist(t *testing.T) {
	out, err := Render(testReport(`{"checklist": []}`))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output does not start with PDF magic")
	}
}

func TestRenderMalformedRecord(t *testing.T) {
	if _, err := Render(testReport("not json at all")); err == nil {
		t.Error("Render() succeeded on malformed record, want error")
	}
}
