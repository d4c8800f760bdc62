package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/docai-extract/internal/annotation"
	"github.com/dvloznov/docai-extract/internal/api/middleware"
	"github.com/dvloznov/docai-extract/internal/audit"
	"github.com/dvloznov/docai-extract/internal/extraction"
	"github.com/dvloznov/docai-extract/internal/jobs"
	"github.com/dvloznov/docai-extract/internal/storage"
)

// Annotator sends document bytes to Document AI and returns the annotated
// document. Defined here so tests can substitute a fake.
type Annotator interface {
	Process(ctx context.Context, content []byte, mimeType string, kind annotation.Kind) (*extraction.AnnotatedDocument, error)
}

// ExtractHandler handles the synchronous extraction endpoints.
type ExtractHandler struct {
	annotator Annotator
	content   storage.ContentProvider
	extractor *extraction.Extractor
	recorder  audit.Recorder
	log       zerolog.Logger
}

// NewExtractHandler creates a new extraction handler.
func NewExtractHandler(annotator Annotator, content storage.ContentProvider, extractor *extraction.Extractor, recorder audit.Recorder, log zerolog.Logger) *ExtractHandler {
	return &ExtractHandler{
		annotator: annotator,
		content:   content,
		extractor: extractor,
		recorder:  recorder,
		log:       log,
	}
}

// ProcessForm handles POST /process/form
func (h *ExtractHandler) ProcessForm(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, annotation.KindForm)
}

// ProcessBank handles POST /process/bank
func (h *ExtractHandler) ProcessBank(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, annotation.KindBank)
}

// process reads document bytes from a multipart upload or a JSON storage
// reference, annotates them, and returns the extracted record.
func (h *ExtractHandler) process(w http.ResponseWriter, r *http.Request, kind annotation.Kind) {
	ctx := r.Context()

	content, mimeType, source, err := h.readContent(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	runID, auditErr := h.recorder.StartRun(ctx, source, string(kind))
	if auditErr != nil {
		h.log.Warn().Err(auditErr).Msg("Failed to record extraction run")
	}

	record, err := h.extract(ctx, content, mimeType, kind)
	if err != nil {
		h.recorder.FailRun(ctx, runID, err)
		h.log.Error().Err(err).Str("kind", string(kind)).Msg("Extraction failed")
		middleware.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.recorder.FinishRun(ctx, runID); err != nil {
		h.log.Warn().Err(err).Str("run_id", runID).Msg("Failed to finish extraction run")
	}

	h.log.Info().
		Str("kind", string(kind)).
		Str("source", source).
		Str("filename", storage.Filename(source)).
		Msg("Document extracted")

	middleware.WriteJSON(w, http.StatusOK, record)
}

// extract annotates the content and runs the extractor for the given kind.
func (h *ExtractHandler) extract(ctx context.Context, content []byte, mimeType string, kind annotation.Kind) (interface{}, error) {
	doc, err := h.annotator.Process(ctx, content, mimeType, kind)
	if err != nil {
		return nil, fmt.Errorf("annotate document: %w", err)
	}

	switch kind {
	case annotation.KindForm:
		return h.extractor.ExtractForm(doc), nil
	case annotation.KindBank:
		return h.extractor.ExtractStatement(doc), nil
	default:
		return nil, fmt.Errorf("unknown document kind: %q", kind)
	}
}

// readContent pulls document bytes from the request. Multipart requests
// must carry a "file" field; JSON requests must carry a storage_path.
func (h *ExtractHandler) readContent(r *http.Request) (content []byte, mimeType, source string, err error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", "", fmt.Errorf("file upload required for multipart request")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", "", fmt.Errorf("read uploaded file: %w", err)
		}

		mimeType = header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/pdf"
		}
		return data, mimeType, header.Filename, nil
	}

	var req struct {
		StoragePath string `json:"storage_path"`
		MimeType    string `json:"mime_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, "", "", fmt.Errorf("invalid request body")
	}
	if req.StoragePath == "" {
		return nil, "", "", fmt.Errorf("storage_path required in JSON body")
	}

	data, err := h.content.Fetch(r.Context(), req.StoragePath)
	if err != nil {
		return nil, "", "", fmt.Errorf("fetch %s: %w", req.StoragePath, err)
	}

	mimeType = req.MimeType
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	return data, mimeType, req.StoragePath, nil
}

// EnqueueExtract handles POST /api/extract
// It enqueues an extraction job and returns 202 with the job ID.
func (h *ExtractHandler) EnqueueExtract(publisher jobs.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StoragePath string `json:"storage_path"`
			Kind        string `json:"kind"`
			MimeType    string `json:"mime_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.StoragePath == "" {
			middleware.WriteError(w, http.StatusBadRequest, "storage_path is required")
			return
		}
		if req.Kind != string(annotation.KindForm) && req.Kind != string(annotation.KindBank) {
			middleware.WriteError(w, http.StatusBadRequest, "kind must be \"form\" or \"bank\"")
			return
		}

		job := &jobs.ExtractDocumentJob{
			StoragePath: req.StoragePath,
			Kind:        req.Kind,
			MimeType:    req.MimeType,
		}

		if err := publisher.PublishExtractDocument(r.Context(), job); err != nil {
			h.log.Error().Err(err).Msg("Failed to enqueue extraction job")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue extraction job")
			return
		}

		h.log.Info().Str("job_id", job.JobID).Str("storage_path", req.StoragePath).Msg("Extraction job enqueued")

		middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
			"job_id": job.JobID,
			"status": string(job.Status),
		})
	}
}

// HandleJob processes a queued extraction job: fetch, annotate, extract.
// The extracted record is stored on the job for retrieval via the jobs API.
func (h *ExtractHandler) HandleJob(ctx context.Context, job jobs.Job) error {
	extractJob, ok := job.(*jobs.ExtractDocumentJob)
	if !ok {
		return fmt.Errorf("unexpected job type: %s", job.GetType())
	}

	content, err := h.content.Fetch(ctx, extractJob.StoragePath)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", extractJob.StoragePath, err)
	}

	record, err := h.extract(ctx, content, extractJob.MimeType, annotation.Kind(extractJob.Kind))
	if err != nil {
		return err
	}

	result, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal extraction result: %w", err)
	}
	extractJob.Result = result
	return nil
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "docai-extract",
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		Kind:   query.Get("kind"),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
