package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/eleven-am/goconv/internal/domain"
)

// JobService is the slice of the job manager the API needs.
type JobService interface {
	Submit(ctx context.Context, upload io.Reader, filename string, req domain.JobRequest) (*domain.JobResponse, error)
	Get(jobID string) (domain.JobDetail, bool)
	List() []domain.JobDetail
	Cancel(jobID string) bool
}

type Handler struct {
	jobs    JobService
	appName string
	log     *slog.Logger
}

func NewHandler(jobs JobService, appName string, logger *slog.Logger) *Handler {
	return &Handler{jobs: jobs, appName: appName, log: logger}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "app": h.appName})
}

func (h *Handler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	req := domain.JobRequest{
		Quality:     domain.Quality(formValueOr(r, "quality", string(domain.QualityAuto))),
		Codec:       domain.Codec(formValueOr(r, "codec", string(domain.CodecAuto))),
		CallbackURL: r.FormValue("callback_url"),
	}
	if !req.Quality.Valid() {
		http.Error(w, "invalid quality target", http.StatusBadRequest)
		return
	}
	if !req.Codec.Valid() {
		http.Error(w, "invalid codec preference", http.StatusBadRequest)
		return
	}

	resp, err := h.jobs.Submit(r.Context(), file, header.Filename, req)
	if err != nil {
		if errors.Is(err, domain.ErrQueueFull) {
			http.Error(w, "job queue is full", http.StatusServiceUnavailable)
			return
		}
		h.log.Error("job submission failed", "error", err)
		http.Error(w, "failed to accept job", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, resp)
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]domain.JobDetail{"jobs": h.jobs.List()})
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.jobs.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.jobs.Get(r.PathValue("id"))
	if !ok || detail.OutputPath == "" {
		http.Error(w, "job output not ready", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", detail.OutputFilename))
	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, detail.OutputPath)
}

func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if !h.jobs.Cancel(jobID) {
		http.Error(w, "unable to cancel job", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled", "job_id": jobID})
}

func formValueOr(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
