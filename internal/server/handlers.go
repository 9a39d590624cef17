package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/osce-insight/internal/errors"
	"github.com/skillsenselab/osce-insight/internal/logger"
	"github.com/skillsenselab/osce-insight/internal/pdf"
	"github.com/skillsenselab/osce-insight/internal/progress"
	"github.com/skillsenselab/osce-insight/internal/report"
	"github.com/skillsenselab/osce-insight/internal/storage"
	"github.com/skillsenselab/osce-insight/internal/transcribe"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	svc   *report.Service
	store *report.Store
	input storage.Storage
	log   *logger.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(svc *report.Service, store *report.Store, input storage.Storage, log *logger.Logger) *Handlers {
	return &Handlers{svc: svc, store: store, input: input, log: log.WithComponent("http")}
}

// Register mounts all routes on the router.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.health)

	osce := r.Group("/osce")
	osce.POST("/analyze-transcript", h.analyzeTranscript)
	osce.POST("/analyze-file", h.analyzeFile)
	osce.POST("/upload-audio", h.uploadAudio)

	r.GET("/reports", h.listReports)
	r.GET("/reports/:id", h.getReport)
	r.GET("/reports/:id/pdf", h.getReportPDF)
	r.GET("/files", h.listFiles)
}

func (h *Handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type analyzeTranscriptRequest struct {
	Transcript string `json:"transcript"`
	PromptName string `json:"prompt_name"`
	NumReports int    `json:"num_reports"`
}

type analyzeResult struct {
	ReportID  string   `json:"report_id,omitempty"`
	ReportIDs []string `json:"report_ids"`
}

func (h *Handlers) analyzeTranscript(c *gin.Context) {
	var req analyzeTranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.InvalidInput("body", err.Error()))
		return
	}

	ids, err := h.svc.AnalyzeTranscript(c.Request.Context(), req.Transcript, report.AnalyzeOptions{
		PromptName: req.PromptName,
		Count:      req.NumReports,
	}, nil)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondCreated(c, resultFor(ids))
}

type analyzeFileRequest struct {
	FileKey    string `json:"file_key"`
	PromptName string `json:"prompt_name"`
	NumReports int    `json:"num_reports"`
}

func (h *Handlers) analyzeFile(c *gin.Context) {
	var req analyzeFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.InvalidInput("body", err.Error()))
		return
	}

	ids, err := h.svc.AnalyzeStored(c.Request.Context(), req.FileKey, report.AnalyzeOptions{
		PromptName: req.PromptName,
		Count:      req.NumReports,
	}, nil)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondCreated(c, resultFor(ids))
}

// uploadAudio runs the full audio pipeline and streams progress as
// server-sent events. Validation failures are reported as plain JSON errors
// before the stream starts.
func (h *Handlers) uploadAudio(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondWithError(c, apperrors.MissingField("file"))
		return
	}
	if !transcribe.SupportedExtension(fileHeader.Filename) {
		RespondWithError(c, apperrors.InvalidInput("file", "unsupported audio format"))
		return
	}

	opts := report.AnalyzeOptions{
		PromptName: c.PostForm("prompt_name"),
		Count:      formInt(c, "num_reports", 1),
	}

	file, err := fileHeader.Open()
	if err != nil {
		RespondWithError(c, apperrors.InvalidInput("file", err.Error()))
		return
	}
	defer file.Close()

	em := progress.NewChannel()
	go func() {
		defer em.Close()
		// Errors surface through the event stream.
		_, _ = h.svc.ProcessAudio(c.Request.Context(), fileHeader.Filename, file, opts, em)
	}()

	streamEvents(c, em.Events())
}

func (h *Handlers) listReports(c *gin.Context) {
	summaries, err := h.store.List(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, summaries)
}

func (h *Handlers) getReport(c *gin.Context) {
	r, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, r)
}

func (h *Handlers) getReportPDF(c *gin.Context) {
	r, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	body, err := pdf.Render(r)
	if err != nil {
		RespondWithError(c, apperrors.Internal(err))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+r.ID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", body)
}

func (h *Handlers) listFiles(c *gin.Context) {
	files, err := h.input.List(c.Request.Context(), "")
	if err != nil {
		RespondWithError(c, apperrors.StorageError("list files", err))
		return
	}
	RespondOK(c, files)
}

func resultFor(ids []string) analyzeResult {
	out := analyzeResult{ReportIDs: ids}
	if len(ids) == 1 {
		out.ReportID = ids[0]
	}
	return out
}

func formInt(c *gin.Context, field string, fallback int) int {
	raw := c.PostForm(field)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
