package extract

import (
	"encoding/json"
	"strings"
	"testing"

	apperrors "github.com/skillsenselab/osce-insight/internal/errors"
)

func TestExtractFencedJSON(t *testing.T) {
	raw := "```json\n{\"summary\": \"Good rapport.\", \"checklist\": [{\"item\": \"Introduced self\", \"status\": \"Yes\", \"timestamp\": \"00:00:12\"}]}\n```"

	canonical, eval, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(eval.Checklist) != 1 {
		t.Fatalf("checklist length = %d, want 1", len(eval.Checklist))
	}
	if eval.Checklist[0].Item != "Introduced self" || eval.Checklist[0].Status != "Yes" {
		t.Errorf("checklist[0] = %+v", eval.Checklist[0])
	}
	var roundTrip map[string]json.RawMessage
	if err := json.Unmarshal(canonical, &roundTrip); err != nil {
		t.Fatalf("canonical output is not valid JSON: %v", err)
	}
	if string(roundTrip["summary"]) != `"Good rapport."` {
		t.Errorf("summary = %s, want preserved verbatim", roundTrip["summary"])
	}
}

func TestExtractProseWrapped(t *testing.T) {
	raw := "Here is the evaluation you asked for:\n{\"checklist\": []}\nLet me know if you need anything else."

	_, eval, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(eval.Checklist) != 0 {
		t.Errorf("checklist length = %d, want 0", len(eval.Checklist))
	}
}

func TestExtractMissingChecklist(t *testing.T) {
	canonical, eval, err := Extract(`{"summary": "No checklist returned."}`)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if eval.Checklist == nil || len(eval.Checklist) != 0 {
		t.Errorf("checklist = %v, want empty non-nil", eval.Checklist)
	}
	if !strings.Contains(string(canonical), `"checklist":[]`) {
		t.Errorf("canonical output %s missing empty checklist", canonical)
	}
}

func TestExtractNoJSON(t *testing.T) {
	raw := "I cannot evaluate this transcript."
	_, _, err := Extract(raw)
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("Extract() error = %v, want AppError", err)
	}
	if appErr.Code != apperrors.ErrCodeMalformedResponse {
		t.Errorf("error code = %s, want %s", appErr.Code, apperrors.ErrCodeMalformedResponse)
	}
}

func TestExtractInvalidJSON(t *testing.T) {
	_, _, err := Extract(`{"checklist": [}`)
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("Extract() error = %v, want AppError", err)
	}
	if appErr.Code != apperrors.ErrCodeMalformedResponse {
		t.Errorf("error code = %s, want %s", appErr.Code, apperrors.ErrCodeMalformedResponse)
	}
}

func TestExtractNormalizesTimestamps(t *testing.T) {
	raw := `{"checklist": [
		{"item": "a", "status": "Yes", "timestamp": "00:01:02.345"},
		{"item": "b", "status": "No", "timestamp": "00:01:02,999", "timestamp_end": "00:01:05.1"},
		{"item": "c", "status": "Not Sure", "timestamp": "00:01:02"}
	]}`

	_, eval, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	for i, want := range []string{"00:01:02", "00:01:02", "00:01:02"} {
		if got := eval.Checklist[i].Timestamp; got != want {
			t.Errorf("checklist[%d].Timestamp = %q, want %q", i, got, want)
		}
	}
	if got := eval.Checklist[1].TimestampEnd; got != "00:01:05" {
		t.Errorf("checklist[1].TimestampEnd = %q, want 00:01:05", got)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"a": 1}`, `{"a": 1}`},
		{"bare fences", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"language tag", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\": 1}\n```\n  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBraceSlice(t *testing.T) {
	if got := BraceSlice(`before {"a": {"b": 1}} after`); got != `{"a": {"b": 1}}` {
		t.Errorf("BraceSlice() = %q", got)
	}
	if got := BraceSlice("no object here"); got != "" {
		t.Errorf("BraceSlice() = %q, want empty", got)
	}
	if got := BraceSlice("} reversed {"); got != "" {
		t.Errorf("BraceSlice() = %q, want empty for reversed braces", got)
	}
}

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"00:01:02.345", "00:01:02"},
		{"00:01:02,999", "00:01:02"},
		{"00:01:02", "00:01:02"},
		{"0:01:02:extra", "0:01:02:"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTimestamp(tt.in); got != tt.want {
			t.Errorf("NormalizeTimestamp(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
