// Package extract recovers the structured evaluation record from raw model
// output. Model responses frequently wrap the JSON payload in markdown fences
// or surrounding prose; the functions here peel those layers off as a
// pipeline of pure string transforms.
package extract

import (
	"encoding/json"
	"strings"

	apperrors "github.com/skillsenselab/osce-insight/internal/errors"
)

// checklistKey is the one field every evaluation record must carry.
const checklistKey = "checklist"

// ChecklistItem is one scored criterion in an evaluation.
type ChecklistItem struct {
	Item     string `json:"item"`
	Status   string `json:"status"`
	Evidence string `json:"evidence,omitempty"`
	// Timestamp is the HH:MM:SS encounter time the evidence points at.
	Timestamp    string `json:"timestamp,omitempty"`
	TimestampEnd string `json:"timestamp_end,omitempty"`
}

// Evaluation is the parsed evaluation record. Fields beyond the checklist
// are model-defined and preserved verbatim in Extra.
type Evaluation struct {
	Checklist []ChecklistItem
	// Extra holds every top-level field other than the checklist, raw.
	Extra map[string]json.RawMessage
}

// StripFences removes a leading/trailing markdown code fence, tolerating a
// language tag on the opening fence. Input without fences passes through
// unchanged apart from whitespace trimming.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s[3:], "\n"); idx >= 0 {
		s = s[3+idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// BraceSlice cuts s down to the span from the first '{' to the last '}'.
// The empty string signals no candidate object exists.
func BraceSlice(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

// NormalizeTimestamp reduces a timestamp to plain HH:MM:SS: fractional
// seconds after '.' or ',' are dropped and the result is capped at eight
// characters. Values already in shape pass through unchanged.
func NormalizeTimestamp(ts string) string {
	if i := strings.IndexAny(ts, ".,"); i >= 0 {
		ts = ts[:i]
	}
	if len(ts) > 8 {
		ts = ts[:8]
	}
	return ts
}

// Extract recovers the evaluation record from raw model output. It returns
// the canonical JSON encoding alongside the parsed record. Timestamps in the
// checklist are normalized, and a missing checklist is materialized as empty
// so downstream consumers never see null. Raw output with no parseable JSON
// object yields a MALFORMED_RESPONSE error carrying a preview of the output.
func Extract(raw string) ([]byte, *Evaluation, error) {
	candidate := BraceSlice(StripFences(raw))
	if candidate == "" {
		return nil, nil, apperrors.MalformedResponse(raw, nil)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return nil, nil, apperrors.MalformedResponse(raw, err)
	}

	eval := &Evaluation{
		Checklist: []ChecklistItem{},
		Extra:     make(map[string]json.RawMessage, len(fields)),
	}
	for k, v := range fields {
		if k == checklistKey {
			continue
		}
		eval.Extra[k] = v
	}

	if rawList, ok := fields[checklistKey]; ok {
		if err := json.Unmarshal(rawList, &eval.Checklist); err != nil {
			return nil, nil, apperrors.MalformedResponse(raw, err)
		}
		for i := range eval.Checklist {
			eval.Checklist[i].Timestamp = NormalizeTimestamp(eval.Checklist[i].Timestamp)
			eval.Checklist[i].TimestampEnd = NormalizeTimestamp(eval.Checklist[i].TimestampEnd)
		}
		if eval.Checklist == nil {
			eval.Checklist = []ChecklistItem{}
		}
	}

	canonical, err := marshalEvaluation(eval)
	if err != nil {
		return nil, nil, apperrors.MalformedResponse(raw, err)
	}
	return canonical, eval, nil
}

// marshalEvaluation re-encodes the record with the normalized checklist in
// place of the original and all other fields untouched.
func marshalEvaluation(eval *Evaluation) ([]byte, error) {
	out := make(map[string]json.RawMessage, len(eval.Extra)+1)
	for k, v := range eval.Extra {
		out[k] = v
	}
	list, err := json.Marshal(eval.Checklist)
	if err != nil {
		return nil, err
	}
	out[checklistKey] = list
	return json.Marshal(out)
}
