package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/skillsenselab/osce-insight/internal/errors"
	"github.com/skillsenselab/osce-insight/internal/extract"
	"github.com/skillsenselab/osce-insight/internal/logger"
	"github.com/skillsenselab/osce-insight/internal/progress"
	"github.com/skillsenselab/osce-insight/internal/storage"
)

// Transcriber converts stored audio into a formatted transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaURI, fileName string) (string, error)
}

// AnalyzeOptions tunes one analysis request.
type AnalyzeOptions struct {
	// PromptName selects a prompt template; empty selects the default.
	PromptName string
	// Count is the number of independent reports to generate. It is
	// clamped to [1, 10].
	Count int
	// SourceFile is the originating audio object key, when known.
	SourceFile string
}

// Service orchestrates the pipeline: audio upload, transcription, report
// generation and extraction, and persistence.
type Service struct {
	generator   *Generator
	store       *Store
	transcriber Transcriber
	input       storage.Storage
	output      storage.Storage
	mediaPrefix string
	log         *logger.Logger
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Generator   *Generator
	Store       *Store
	Transcriber Transcriber
	// Input receives uploaded audio objects.
	Input storage.Storage
	// Output holds transcripts and reports; the Store writes here too.
	Output storage.Storage
	// MediaURIPrefix turns an input object key into the media URI handed
	// to the transcription service (e.g. "s3://bucket/").
	MediaURIPrefix string
}

// NewService creates a Service.
func NewService(cfg ServiceConfig, log *logger.Logger) *Service {
	return &Service{
		generator:   cfg.Generator,
		store:       cfg.Store,
		transcriber: cfg.Transcriber,
		input:       cfg.Input,
		output:      cfg.Output,
		mediaPrefix: cfg.MediaURIPrefix,
		log:         log.WithComponent("report"),
	}
}

// AnalyzeTranscript generates opts.Count reports from an already formatted
// transcript and persists them. Exactly one terminal progress event is
// emitted: complete with the new report IDs, or error.
func (s *Service) AnalyzeTranscript(ctx context.Context, transcript string, opts AnalyzeOptions, em progress.Emitter) ([]string, error) {
	if em == nil {
		em = progress.Nop{}
	}
	ids, err := s.analyze(ctx, transcript, opts, em)
	if err != nil {
		s.emitFailure(em, err)
		return nil, err
	}
	s.emitComplete(em, ids)
	return ids, nil
}

// AnalyzeStored generates reports from a transcript previously persisted in
// output storage under transcriptKey.
func (s *Service) AnalyzeStored(ctx context.Context, transcriptKey string, opts AnalyzeOptions, em progress.Emitter) ([]string, error) {
	if em == nil {
		em = progress.Nop{}
	}
	ids, err := s.analyzeStored(ctx, transcriptKey, opts, em)
	if err != nil {
		s.emitFailure(em, err)
		return nil, err
	}
	s.emitComplete(em, ids)
	return ids, nil
}

// ProcessAudio runs the full pipeline: store the audio, transcribe it,
// persist the formatted transcript, then generate and persist reports.
func (s *Service) ProcessAudio(ctx context.Context, fileName string, audio io.Reader, opts AnalyzeOptions, em progress.Emitter) ([]string, error) {
	if em == nil {
		em = progress.Nop{}
	}
	ids, err := s.processAudio(ctx, fileName, audio, opts, em)
	if err != nil {
		s.emitFailure(em, err)
		return nil, err
	}
	s.emitComplete(em, ids)
	return ids, nil
}

func (s *Service) analyze(ctx context.Context, transcript string, opts AnalyzeOptions, em progress.Emitter) ([]string, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, apperrors.MissingField("transcript")
	}
	count := clampCount(opts.Count)

	em.Emit(progress.Event{Status: progress.StatusAnalyzing, Message: "generating evaluation"})
	if count > 1 {
		em.Emit(progress.Event{Status: progress.StatusProcessing, Message: fmt.Sprintf("generating %d reports", count)})
	}
	s.log.Info("generating reports", logger.Fields("count", count, "prompt", opts.PromptName))

	canonicals, err := s.generateAll(ctx, transcript, opts.PromptName, count)
	if err != nil {
		return nil, err
	}

	em.Emit(progress.Event{Status: progress.StatusSaving, Message: "saving reports"})
	ids := make([]string, count)
	for i, canonical := range canonicals {
		r := &Report{
			ID:         s.reportID(opts, count),
			CreatedAt:  time.Now().UTC(),
			Transcript: transcript,
			Report:     json.RawMessage(canonical),
			SourceFile: opts.SourceFile,
			ModelID:    s.generator.ModelID(),
		}
		if err := s.store.Save(ctx, r); err != nil {
			return nil, err
		}
		ids[i] = r.ID
	}
	return ids, nil
}

func (s *Service) analyzeStored(ctx context.Context, transcriptKey string, opts AnalyzeOptions, em progress.Emitter) ([]string, error) {
	if transcriptKey == "" {
		return nil, apperrors.MissingField("file_key")
	}
	body, err := storage.DownloadBytes(ctx, s.output, transcriptKey)
	if err != nil {
		return nil, apperrors.StorageError("read transcript", err)
	}
	return s.analyze(ctx, string(body), opts, em)
}

func (s *Service) processAudio(ctx context.Context, fileName string, audio io.Reader, opts AnalyzeOptions, em progress.Emitter) ([]string, error) {
	if fileName == "" {
		return nil, apperrors.MissingField("file")
	}

	em.Emit(progress.Event{Status: progress.StatusUploading, Message: "uploading audio"})
	key := fileName
	if err := s.input.Upload(ctx, key, audio, contentTypeFor(fileName)); err != nil {
		return nil, apperrors.StorageError("upload audio", err)
	}
	em.Emit(progress.Event{Status: progress.StatusUploading, Message: "audio stored", FileKey: key})

	em.Emit(progress.Event{Status: progress.StatusTranscribing, Message: "transcription in progress"})
	transcript, err := s.transcriber.Transcribe(ctx, s.mediaPrefix+key, fileName)
	if err != nil {
		return nil, err
	}

	em.Emit(progress.Event{Status: progress.StatusSaving, Message: "saving transcript"})
	if err := s.store.SaveTranscript(ctx, key, transcript); err != nil {
		return nil, err
	}

	opts.SourceFile = key
	return s.analyze(ctx, transcript, opts, em)
}

// reportID derives storage identity for a new report. A single report from a
// known source file keeps the deterministic source-derived name; everything
// else gets a fresh UUID.
func (s *Service) reportID(opts AnalyzeOptions, count int) string {
	if count == 1 && opts.SourceFile != "" {
		return ReportIDForSource(opts.SourceFile)
	}
	return uuid.NewString()
}

func (s *Service) emitComplete(em progress.Emitter, ids []string) {
	event := progress.Event{Status: progress.StatusComplete, Message: "done", ReportIDs: ids}
	if len(ids) == 1 {
		event.ReportID = ids[0]
	}
	em.Emit(event)
}

func (s *Service) emitFailure(em progress.Emitter, err error) {
	s.log.WithError(err).Error("pipeline run failed")
	em.Emit(progress.Event{Status: progress.StatusError, Message: err.Error()})
}

// extractCanonical adapts the extraction step for the generation fan-out.
func extractCanonical(raw string) ([]byte, *extract.Evaluation, error) {
	return extract.Extract(raw)
}

func contentTypeFor(fileName string) string {
	if ct := mime.TypeByExtension(filepath.Ext(fileName)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
