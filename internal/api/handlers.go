package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shopcrawl/shopcrawl/internal/jobs"
	"github.com/shopcrawl/shopcrawl/internal/sites"
)

type Handlers struct {
	jobs     *jobs.Manager
	registry *sites.Registry
	logger   *slog.Logger
}

func NewHandlers(jobs *jobs.Manager, registry *sites.Registry, logger *slog.Logger) *Handlers {
	return &Handlers{
		jobs:     jobs,
		registry: registry,
		logger:   logger,
	}
}

// CreateJobRequest represents a new scraping job request
type CreateJobRequest struct {
	Site     string `json:"site"`
	Query    string `json:"query"`
	MaxPages int    `json:"max_pages"`
}

// CreateJobResponse represents the job creation response
type CreateJobResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CreateJob handles new scraping job creation
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		h.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	if _, ok := h.registry.ByID(req.Site); !ok {
		h.respondError(w, http.StatusBadRequest, "unknown site: "+req.Site)
		return
	}

	job, err := h.jobs.CreateJob(r.Context(), req.Site, req.Query, req.MaxPages)
	if err != nil {
		h.logger.Error("failed to create job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	h.respondJSON(w, http.StatusCreated, CreateJobResponse{
		JobID:   job.ID,
		Status:  job.Status,
		Message: "Job created successfully",
	})
}

// GetJob handles job status retrieval
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		h.respondError(w, http.StatusBadRequest, "job ID is required")
		return
	}

	job, err := h.jobs.GetJob(r.Context(), jobID)
	if errors.Is(err, jobs.ErrJobNotFound) {
		h.respondError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get job")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

// ListJobs handles listing all jobs
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	// TODO: Add pagination
	all, err := h.jobs.ListJobs(r.Context())
	if err != nil {
		h.logger.Error("failed to list jobs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	h.respondJSON(w, http.StatusOK, all)
}

// GetJobListings handles retrieving listings found by a job
func (h *Handlers) GetJobListings(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		h.respondError(w, http.StatusBadRequest, "job ID is required")
		return
	}

	if _, err := h.jobs.GetJob(r.Context(), jobID); errors.Is(err, jobs.ErrJobNotFound) {
		h.respondError(w, http.StatusNotFound, "job not found")
		return
	}

	listings, err := h.jobs.JobListings(r.Context(), jobID)
	if err != nil {
		h.logger.Error("failed to get job listings", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get listings")
		return
	}

	h.respondJSON(w, http.StatusOK, listings)
}

// SiteInfo is the public description of a supported site.
type SiteInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// ListSites handles listing the supported sites
func (h *Handlers) ListSites(w http.ResponseWriter, r *http.Request) {
	out := make([]SiteInfo, 0, h.registry.Len())
	for _, s := range h.registry.All() {
		out = append(out, SiteInfo{ID: s.ID, DisplayName: s.DisplayName})
	}
	h.respondJSON(w, http.StatusOK, out)
}

// GetStats handles statistics retrieval
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.jobs.GetStats(r.Context())
	if err != nil {
		h.logger.Error("failed to get stats", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}

// Health handles liveness checks
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
