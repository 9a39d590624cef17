package transcript

// Speaker is the role assigned to a diarized speaker label.
type Speaker string

const (
	// SpeakerStudent is the examinee being evaluated.
	SpeakerStudent Speaker = "Student"
	// SpeakerPatient is the standardized patient.
	SpeakerPatient Speaker = "Patient"
)

// Line is one speaker-attributed, timestamped line of a formatted transcript.
type Line struct {
	// Timestamp is the zero-padded HH:MM:SS segment start time.
	Timestamp string `json:"timestamp"`
	// Speaker is the attributed role.
	Speaker Speaker `json:"speaker"`
	// Text is the spoken words of the segment, joined by single spaces.
	Text string `json:"text"`
}

// Document mirrors the JSON result document produced by the transcription
// service. Only the fields the formatter reads are declared.
type Document struct {
	Results *Results `json:"results"`
}

// Results holds the recognized items and speaker-attributed segments.
type Results struct {
	SpeakerLabels *SpeakerLabels `json:"speaker_labels"`
	Items         []Item         `json:"items"`
}

// SpeakerLabels groups the per-speaker time segments.
type SpeakerLabels struct {
	Segments []Segment `json:"segments"`
}

// Segment is one contiguous span attributed to a single speaker. Its items
// reference recognized words by start time.
type Segment struct {
	SpeakerLabel string        `json:"speaker_label"`
	StartTime    string        `json:"start_time"`
	EndTime      string        `json:"end_time"`
	Items        []SegmentItem `json:"items"`
}

// SegmentItem references one recognized word within a segment.
type SegmentItem struct {
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	SpeakerLabel string `json:"speaker_label"`
}

// Item is one recognized token with its candidate readings.
type Item struct {
	StartTime    string        `json:"start_time"`
	EndTime      string        `json:"end_time"`
	Type         string        `json:"type"`
	Alternatives []Alternative `json:"alternatives"`
}

// Alternative is one candidate reading of an item.
type Alternative struct {
	Content    string `json:"content"`
	Confidence string `json:"confidence"`
}
