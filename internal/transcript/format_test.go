package transcript

import (
	"reflect"
	"testing"
)

func sampleDocument() *Document {
	return &Document{
		Results: &Results{
			SpeakerLabels: &SpeakerLabels{
				Segments: []Segment{
					{
						SpeakerLabel: "spk_0",
						StartTime:    "1.04",
						Items: []SegmentItem{
							{StartTime: "1.04"},
							{StartTime: "1.52"},
						},
					},
					{
						SpeakerLabel: "spk_1",
						StartTime:    "3.2",
						Items: []SegmentItem{
							{StartTime: "3.2"},
						},
					},
				},
			},
			Items: []Item{
				{StartTime: "1.04", Alternatives: []Alternative{{Content: "Good"}}},
				{StartTime: "1.52", Alternatives: []Alternative{{Content: "morning"}}},
				{StartTime: "3.2", Alternatives: []Alternative{{Content: "Hello"}}},
			},
		},
	}
}

func TestFormat_SpeakerRolesAndText(t *testing.T) {
	lines := Format(sampleDocument())
	want := []Line{
		{Timestamp: "00:00:01", Speaker: SpeakerStudent, Text: "Good morning"},
		{Timestamp: "00:00:03", Speaker: SpeakerPatient, Text: "Hello"},
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Format() = %+v, want %+v", lines, want)
	}
}

func TestFormat_NilDocument(t *testing.T) {
	if got := Format(nil); len(got) != 0 {
		t.Errorf("expected empty output for nil document, got %+v", got)
	}
	if got := Format(&Document{}); len(got) != 0 {
		t.Errorf("expected empty output for document without results, got %+v", got)
	}
}

func TestFormat_NoSegments(t *testing.T) {
	doc := &Document{Results: &Results{SpeakerLabels: &SpeakerLabels{}}}
	if got := Format(doc); len(got) != 0 {
		t.Errorf("expected empty output for zero segments, got %+v", got)
	}
}

func TestFormat_SegmentWithoutMatchingWordsIsDropped(t *testing.T) {
	doc := sampleDocument()
	doc.Results.SpeakerLabels.Segments = append(doc.Results.SpeakerLabels.Segments, Segment{
		SpeakerLabel: "spk_0",
		StartTime:    "9.9",
		Items:        []SegmentItem{{StartTime: "99.99"}},
	})

	lines := Format(doc)
	if len(lines) != 2 {
		t.Errorf("expected unmatched segment to be dropped, got %d lines", len(lines))
	}
}

func TestFormat_Idempotent(t *testing.T) {
	first := Format(sampleDocument())
	second := Format(sampleDocument())
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical output for identical input")
	}
}

func TestRoleForLabel_Fallback(t *testing.T) {
	if got := RoleForLabel("spk_0"); got != SpeakerStudent {
		t.Errorf("spk_0 = %s, want Student", got)
	}
	if got := RoleForLabel("spk_1"); got != SpeakerPatient {
		t.Errorf("spk_1 = %s, want Patient", got)
	}
	if got := RoleForLabel("spk_7"); got != SpeakerPatient {
		t.Errorf("spk_7 = %s, want Patient fallback", got)
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00"},
		{1.9, "00:00:01"},
		{61, "00:01:01"},
		{3723.5, "01:02:03"},
	}
	for _, tc := range cases {
		if got := FormatSeconds(tc.in); got != tc.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRender(t *testing.T) {
	lines := []Line{
		{Timestamp: "00:00:01", Speaker: SpeakerStudent, Text: "Hello"},
		{Timestamp: "00:00:02", Speaker: SpeakerPatient, Text: "Hi"},
	}
	want := "[00:00:01] Student: Hello\n[00:00:02] Patient: Hi"
	if got := Render(lines); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
	if got := Render(nil); got != "" {
		t.Errorf("Render(nil) = %q, want empty", got)
	}
}
