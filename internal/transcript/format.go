// Package transcript reconstructs a readable speaker-attributed transcript
// from raw diarization output.
package transcript

import (
	"fmt"
	"strconv"
	"strings"
)

// speakerRoles maps diarization labels to roles. The convention is positional:
// the recording places the examinee on the first channel. Any label outside
// the map falls back to Patient.
var speakerRoles = map[string]Speaker{
	"spk_0": SpeakerStudent,
	"spk_1": SpeakerPatient,
}

// RoleForLabel resolves a raw speaker label to its role.
func RoleForLabel(label string) Speaker {
	if role, ok := speakerRoles[label]; ok {
		return role
	}
	return SpeakerPatient
}

// Format converts a transcription result document into ordered transcript
// lines. The full slice is built eagerly; later stages need its length for
// progress messaging. A document without diarization data yields an empty
// slice, not an error.
func Format(doc *Document) []Line {
	if doc == nil || doc.Results == nil || doc.Results.SpeakerLabels == nil {
		return nil
	}

	// Word lookup keyed by start time. First occurrence wins; start times are
	// expected to be unique within a job.
	words := make(map[string]string, len(doc.Results.Items))
	for _, item := range doc.Results.Items {
		if item.StartTime == "" || len(item.Alternatives) == 0 {
			continue
		}
		if _, ok := words[item.StartTime]; !ok {
			words[item.StartTime] = item.Alternatives[0].Content
		}
	}

	var lines []Line
	for _, seg := range doc.Results.SpeakerLabels.Segments {
		var parts []string
		for _, it := range seg.Items {
			if w, ok := words[it.StartTime]; ok {
				parts = append(parts, w)
			}
		}
		// A segment with no resolvable words produces no line.
		if len(parts) == 0 {
			continue
		}
		lines = append(lines, Line{
			Timestamp: FormatSeconds(parseSeconds(seg.StartTime)),
			Speaker:   RoleForLabel(seg.SpeakerLabel),
			Text:      strings.Join(parts, " "),
		})
	}
	return lines
}

// Render joins transcript lines into the canonical text form:
//
//	[HH:MM:SS] Speaker: text
func Render(lines []Line) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s] %s: %s", l.Timestamp, l.Speaker, l.Text)
	}
	return b.String()
}

// FormatSeconds formats a second offset as zero-padded HH:MM:SS.
func FormatSeconds(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
