package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/osce-insight/internal/llm"
	"github.com/skillsenselab/osce-insight/internal/logger"
	"github.com/skillsenselab/osce-insight/internal/report"
	"github.com/skillsenselab/osce-insight/internal/storage/memstore"
)

const testTranscript = "[00:00:01] Student: Hello, I'm a medical student.\n[00:00:04] Patient: Hi."

type fakeBackend struct {
	response string
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Generate(context.Context, llm.Request) (string, error) {
	if f.response != "" {
		return f.response, nil
	}
	return `{"summary": "ok", "checklist": []}`, nil
}

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(context.Context, string, string) (string, error) {
	return testTranscript, nil
}

type testEnv struct {
	engine  *gin.Engine
	input   *memstore.Storage
	output  *memstore.Storage
	store   *report.Store
	backend *fakeBackend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := &fakeBackend{}
	input := memstore.New()
	output := memstore.New()
	store := report.NewStore(output)
	log := logger.NewDefault("test")
	svc := report.NewService(report.ServiceConfig{
		Generator:      report.NewGenerator(backend, llm.NewPromptStore("", ""), "test-model"),
		Store:          store,
		Transcriber:    fakeTranscriber{},
		Input:          input,
		Output:         output,
		MediaURIPrefix: "s3://input/",
	}, log)

	engine := gin.New()
	NewHandlers(svc, store, input, log).Register(engine)
	return &testEnv{engine: engine, input: input, output: output, store: store, backend: backend}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestAnalyzeTranscriptEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/osce/analyze-transcript", map[string]any{
		"transcript":  testTranscript,
		"num_reports": 2,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", w.Code, w.Body)
	}

	var resp struct {
		Data struct {
			ReportID  string   `json:"report_id"`
			ReportIDs []string `json:"report_ids"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data.ReportIDs) != 2 {
		t.Errorf("report_ids = %v, want 2", resp.Data.ReportIDs)
	}
	for _, id := range resp.Data.ReportIDs {
		if _, err := env.store.Get(context.Background(), id); err != nil {
			t.Errorf("Get(%s) error = %v", id, err)
		}
	}
}

func TestAnalyzeTranscriptEndpointMissingTranscript(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/osce/analyze-transcript", map[string]any{"num_reports": 1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", w.Code, w.Body)
	}
	if !strings.Contains(w.Body.String(), "MISSING_FIELD") {
		t.Errorf("body = %s, want MISSING_FIELD code", w.Body)
	}
}

func TestAnalyzeTranscriptEndpointMalformedModelOutput(t *testing.T) {
	env := newTestEnv(t)
	env.backend.response = "sorry, no JSON today"

	w := env.do(t, http.MethodPost, "/osce/analyze-transcript", map[string]any{
		"transcript": testTranscript,
	})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502; body %s", w.Code, w.Body)
	}
	if !strings.Contains(w.Body.String(), "MALFORMED_RESPONSE") {
		t.Errorf("body = %s, want MALFORMED_RESPONSE code", w.Body)
	}
}

func TestAnalyzeFileEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.store.SaveTranscript(ctx, "exam.mp3", testTranscript); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, http.MethodPost, "/osce/analyze-file", map[string]any{
		"file_key": "exam-transcript.txt",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", w.Code, w.Body)
	}
}

func TestUploadAudioEndpointStreamsEvents(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "exam.mp3")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(part, "audio-bytes")
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/osce/upload-audio", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q, want text/event-stream", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, `"status":"transcribing"`) {
		t.Errorf("stream missing transcribing event:\n%s", body)
	}
	if !strings.Contains(body, `"status":"complete"`) {
		t.Errorf("stream missing complete event:\n%s", body)
	}
	if !strings.Contains(body, `"report_id":"exam-report"`) {
		t.Errorf("stream missing report id:\n%s", body)
	}

	if _, err := env.store.Get(context.Background(), "exam-report"); err != nil {
		t.Errorf("report not persisted: %v", err)
	}
}

func TestUploadAudioEndpointRejectsUnsupportedFormat(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(part, "not audio")
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/osce/upload-audio", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", w.Code, w.Body)
	}
	if !strings.Contains(w.Body.String(), "INVALID_INPUT") {
		t.Errorf("body = %s, want INVALID_INPUT code", w.Body)
	}
}

func TestGetReportEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	saved := &report.Report{
		ID:     "exam-report",
		Report: json.RawMessage(`{"checklist":[]}`),
	}
	if err := env.store.Save(ctx, saved); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, http.MethodGet, "/reports/exam-report", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body)
	}
	if !strings.Contains(w.Body.String(), `"id":"exam-report"`) {
		t.Errorf("body = %s", w.Body)
	}
}

func TestGetReportEndpointNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/reports/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body %s", w.Code, w.Body)
	}
	if !strings.Contains(w.Body.String(), "NOT_FOUND") {
		t.Errorf("body = %s, want NOT_FOUND code", w.Body)
	}
}

func TestGetReportPDFEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	saved := &report.Report{
		ID:     "exam-report",
		Report: json.RawMessage(`{"summary": "ok", "checklist": [{"item": "Introduced self", "status": "Yes"}]}`),
	}
	if err := env.store.Save(ctx, saved); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, http.MethodGet, "/reports/exam-report/pdf", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q, want application/pdf", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("body does not start with PDF magic")
	}
}

func TestListEndpoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.store.Save(ctx, &report.Report{ID: "a", Report: json.RawMessage(`{}`)}); err != nil {
		t.Fatal(err)
	}
	if err := env.input.Upload(ctx, "exam.mp3", strings.NewReader("audio"), "audio/mpeg"); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, http.MethodGet, "/reports", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /reports status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"id":"a"`) {
		t.Errorf("GET /reports body = %s", w.Body)
	}

	w = env.do(t, http.MethodGet, "/files", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /files status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "exam.mp3") {
		t.Errorf("GET /files body = %s", w.Body)
	}
}
