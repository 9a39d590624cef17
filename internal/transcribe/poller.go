package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/skillsenselab/osce-insight/internal/errors"
	"github.com/skillsenselab/osce-insight/internal/logger"
	"github.com/skillsenselab/osce-insight/internal/transcript"
)

// jobNamePrefix namespaces our jobs on the shared transcription service.
const jobNamePrefix = "osce-"

// PollerConfig tunes the job polling loop.
type PollerConfig struct {
	// Interval is the delay between status reads.
	Interval time.Duration
	// MaxAttempts bounds the number of status reads; 0 means unbounded
	// (the caller's context deadline is then the only stop condition).
	MaxAttempts int
	// Language is the language code submitted with each job.
	Language string
	// MaxSpeakers bounds speaker diarization on each job.
	MaxSpeakers int
}

// ApplyDefaults fills zero-valued fields.
func (c *PollerConfig) ApplyDefaults() {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Second
	}
	if c.Language == "" {
		c.Language = "en-US"
	}
	if c.MaxSpeakers == 0 {
		c.MaxSpeakers = 2
	}
}

// Poller runs a transcription job end to end: submit, poll to a terminal
// status, fetch and format the result, and delete the job record.
type Poller struct {
	client  Client
	fetcher ResultFetcher
	cfg     PollerConfig
	log     *logger.Logger
}

// NewPoller creates a Poller. fetcher may be nil, in which case results are
// fetched over HTTP.
func NewPoller(client Client, fetcher ResultFetcher, cfg PollerConfig, log *logger.Logger) *Poller {
	cfg.ApplyDefaults()
	if fetcher == nil {
		fetcher = NewHTTPFetcher()
	}
	return &Poller{
		client:  client,
		fetcher: fetcher,
		cfg:     cfg,
		log:     log.WithComponent("transcribe"),
	}
}

// Transcribe submits a job for the media at mediaURI and blocks until the
// formatted transcript is available or the job fails. fileName selects the
// media format by extension. The job record is deleted on the way out
// regardless of outcome; a failed delete is logged, not returned.
func (p *Poller) Transcribe(ctx context.Context, mediaURI, fileName string) (string, error) {
	name := jobNamePrefix + uuid.NewString()
	input := StartJobInput{
		Name:        name,
		MediaURI:    mediaURI,
		MediaFormat: MediaFormatFor(fileName),
		Language:    p.cfg.Language,
		MaxSpeakers: p.cfg.MaxSpeakers,
	}

	p.log.Info("starting transcription job",
		logger.Fields("job", name, "format", input.MediaFormat))
	if err := p.client.StartJob(ctx, input); err != nil {
		return "", apperrors.TranscriptionFailed(fmt.Sprintf("job submission failed: %v", err))
	}
	defer p.cleanup(name)

	job, err := p.await(ctx, name)
	if err != nil {
		return "", err
	}
	if job.Status == StatusFailed {
		reason := job.FailureReason
		if reason == "" {
			reason = "transcription job failed"
		}
		return "", apperrors.TranscriptionFailed(reason)
	}

	body, err := p.fetcher.Fetch(ctx, job.ResultURI)
	if err != nil {
		return "", apperrors.TranscriptionFailed(fmt.Sprintf("result fetch failed: %v", err))
	}

	var doc transcript.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", apperrors.TranscriptionFailed(fmt.Sprintf("result parse failed: %v", err))
	}
	return transcript.Render(transcript.Format(&doc)), nil
}

// await polls until the job reaches a terminal status, the attempt budget is
// exhausted, or ctx is done.
func (p *Poller) await(ctx context.Context, name string) (*Job, error) {
	for attempt := 1; ; attempt++ {
		job, err := p.client.GetJob(ctx, name)
		if err != nil {
			return nil, apperrors.TranscriptionFailed(fmt.Sprintf("job status read failed: %v", err))
		}
		if job.Status.Terminal() {
			return job, nil
		}
		if p.cfg.MaxAttempts > 0 && attempt >= p.cfg.MaxAttempts {
			return nil, apperrors.Timeout(fmt.Sprintf("transcription job %s still %s after %d polls", name, job.Status, attempt))
		}

		p.log.Debug("transcription job pending",
			logger.Fields("job", name, "status", string(job.Status), "attempt", attempt))
		select {
		case <-time.After(p.cfg.Interval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// cleanup deletes the job record. Deletion uses a fresh context so it still
// runs when the caller's context is already cancelled.
func (p *Poller) cleanup(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.client.DeleteJob(ctx, name); err != nil {
		p.log.Warn("failed to delete transcription job",
			logger.Fields("job", name, "error", err.Error()))
	}
}
