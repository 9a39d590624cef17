package report

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	apperrors "github.com/skillsenselab/osce-insight/internal/errors"
	"github.com/skillsenselab/osce-insight/internal/storage"
)

const (
	reportSuffix     = "-report"
	jsonExt          = ".json"
	transcriptSuffix = "-transcript.txt"
	contentTypeJSON  = "application/json"
	contentTypeText  = "text/plain; charset=utf-8"
)

// ReportIDForSource derives the report identity for an audio object key:
// the base name without extension, suffixed with "-report".
func ReportIDForSource(fileKey string) string {
	base := fileKey
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base + reportSuffix
}

// TranscriptKeyForSource derives the stored transcript key for an audio
// object key.
func TranscriptKeyForSource(fileKey string) string {
	return strings.TrimSuffix(ReportIDForSource(fileKey), reportSuffix) + transcriptSuffix
}

// Store persists reports in object storage, one JSON object per report.
type Store struct {
	storage storage.Storage
}

// NewStore creates a Store over the output storage backend.
func NewStore(s storage.Storage) *Store {
	return &Store{storage: s}
}

// Save persists a report under its ID. CreatedAt is stamped here if unset.
func (s *Store) Save(ctx context.Context, r *Report) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	body, err := json.Marshal(r)
	if err != nil {
		return apperrors.StorageError("encode report", err)
	}
	if err := storage.UploadBytes(ctx, s.storage, r.ID+jsonExt, body, contentTypeJSON); err != nil {
		return apperrors.StorageError("save report", err)
	}
	return nil
}

// SaveTranscript persists a formatted transcript alongside the reports it
// feeds, keyed off the source audio object.
func (s *Store) SaveTranscript(ctx context.Context, fileKey, transcript string) error {
	key := TranscriptKeyForSource(fileKey)
	if err := storage.UploadBytes(ctx, s.storage, key, []byte(transcript), contentTypeText); err != nil {
		return apperrors.StorageError("save transcript", err)
	}
	return nil
}

// Get loads a report by ID.
func (s *Store) Get(ctx context.Context, id string) (*Report, error) {
	key := id + jsonExt
	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return nil, apperrors.StorageError("read report", err)
	}
	if !exists {
		return nil, apperrors.NotFound("report", id)
	}
	body, err := storage.DownloadBytes(ctx, s.storage, key)
	if err != nil {
		return nil, apperrors.StorageError("read report", err)
	}
	var r Report
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, apperrors.StorageError("decode report", err)
	}
	return &r, nil
}

// List returns summaries of all persisted reports, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	files, err := s.storage.List(ctx, "")
	if err != nil {
		return nil, apperrors.StorageError("list reports", err)
	}
	summaries := make([]Summary, 0, len(files))
	for _, f := range files {
		if !strings.HasSuffix(f.Path, jsonExt) {
			continue
		}
		summaries = append(summaries, Summary{
			ID:        strings.TrimSuffix(f.Path, jsonExt),
			CreatedAt: f.LastModified,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}
