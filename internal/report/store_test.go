package report

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	apperrors "github.com/skillsenselab/osce-insight/internal/errors"
	"github.com/skillsenselab/osce-insight/internal/storage/memstore"
)

func TestReportIDForSource(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"exam.mp3", "exam-report"},
		{"sessions/2026/exam.wav", "exam-report"},
		{"noext", "noext-report"},
		{".hidden", ".hidden-report"},
	}
	for _, tt := range tests {
		if got := ReportIDForSource(tt.key); got != tt.want {
			t.Errorf("ReportIDForSource(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestTranscriptKeyForSource(t *testing.T) {
	if got := TranscriptKeyForSource("exam.mp3"); got != "exam-transcript.txt" {
		t.Errorf("TranscriptKeyForSource(exam.mp3) = %q", got)
	}
}

func TestStoreSaveGet(t *testing.T) {
	store := NewStore(memstore.New())
	ctx := context.Background()

	r := &Report{
		ID:         "exam-report",
		Transcript: "[00:00:01] Student: Hello",
		Report:     json.RawMessage(`{"checklist":[]}`),
		SourceFile: "exam.mp3",
	}
	if err := store.Save(ctx, r); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if r.CreatedAt.IsZero() {
		t.Error("Save() did not stamp CreatedAt")
	}

	got, err := store.Get(ctx, "exam-report")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Transcript != r.Transcript || got.SourceFile != "exam.mp3" {
		t.Errorf("Get() = %+v", got)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	store := NewStore(memstore.New())

	_, err := store.Get(context.Background(), "missing")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeNotFound {
		t.Fatalf("Get(missing) error = %v, want %s", err, apperrors.ErrCodeNotFound)
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	mem := memstore.New()
	store := NewStore(mem)
	ctx := context.Background()

	for _, id := range []string{"older", "newer"} {
		if err := store.Save(ctx, &Report{ID: id, Report: json.RawMessage(`{}`)}); err != nil {
			t.Fatal(err)
		}
	}
	mem.SetModified("older.json", time.Now().Add(-time.Hour))
	// Transcripts share the bucket but are not reports.
	if err := store.SaveTranscript(ctx, "exam.mp3", "text"); err != nil {
		t.Fatal(err)
	}

	summaries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("List() = %d entries, want 2", len(summaries))
	}
	if summaries[0].ID != "newer" || summaries[1].ID != "older" {
		t.Errorf("List() order = [%s %s], want [newer older]", summaries[0].ID, summaries[1].ID)
	}
}
