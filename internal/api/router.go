package api

import "net/http"

// NewRouter wires the job endpoints and applies global middleware.
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("POST /jobs", h.SubmitJob)
	mux.HandleFunc("GET /jobs", h.ListJobs)
	mux.HandleFunc("GET /jobs/{id}", h.GetJob)
	mux.HandleFunc("GET /jobs/{id}/download", h.Download)
	mux.HandleFunc("DELETE /jobs/{id}", h.CancelJob)

	return CORSMiddleware(mux)
}
