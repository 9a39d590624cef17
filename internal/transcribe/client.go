// Package transcribe drives long-running transcription jobs to completion:
// submit, poll until terminal, fetch the result document, format, clean up.
package transcribe

import (
	"context"
	"path/filepath"
	"strings"
)

// JobStatus is the lifecycle state of a transcription job.
type JobStatus string

const (
	StatusSubmitted  JobStatus = "SUBMITTED"
	StatusInProgress JobStatus = "IN_PROGRESS"
	StatusCompleted  JobStatus = "COMPLETED"
	StatusFailed     JobStatus = "FAILED"
)

// Terminal reports whether no further transition can occur from s.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// StartJobInput holds the parameters for submitting a transcription job.
type StartJobInput struct {
	// Name is the process-unique job name.
	Name string
	// MediaURI locates the source audio (e.g. s3://bucket/key).
	MediaURI string
	// MediaFormat is the service's media format code.
	MediaFormat string
	// Language is the expected language code (e.g. en-US).
	Language string
	// MaxSpeakers bounds speaker diarization.
	MaxSpeakers int
}

// Job is the observed state of a submitted transcription job.
type Job struct {
	Name string
	// Status is mutated only by polling reads from the external service.
	Status JobStatus
	// ResultURI locates the result document once Status is COMPLETED.
	ResultURI string
	// FailureReason is set by the service when Status is FAILED.
	FailureReason string
}

// Client is the contract with the external transcription service.
type Client interface {
	// StartJob submits a new transcription job.
	StartJob(ctx context.Context, input StartJobInput) error

	// GetJob reads the current state of a job.
	GetJob(ctx context.Context, name string) (*Job, error)

	// DeleteJob removes a job record from the service.
	DeleteJob(ctx context.Context, name string) error
}

// mediaFormats maps source file extensions to service media format codes.
var mediaFormats = map[string]string{
	"mp3":  "mp3",
	"wav":  "wav",
	"m4a":  "mp4",
	"flac": "flac",
	"ogg":  "ogg",
	"webm": "webm",
}

// defaultMediaFormat is used for unknown extensions; submission proceeds
// rather than failing on an unrecognized suffix.
const defaultMediaFormat = "mp3"

// MediaFormatFor selects the media format code for a file name.
func MediaFormatFor(fileName string) string {
	if f, ok := mediaFormats[extensionOf(fileName)]; ok {
		return f
	}
	return defaultMediaFormat
}

// SupportedExtension reports whether the file extension has an explicit
// media format mapping.
func SupportedExtension(fileName string) bool {
	_, ok := mediaFormats[extensionOf(fileName)]
	return ok
}

func extensionOf(fileName string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
}
