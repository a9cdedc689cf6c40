// Package jobs stores scrape jobs in Postgres and runs them one at a time
// through the session engine.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shopcrawl/shopcrawl/internal/events"
	"github.com/shopcrawl/shopcrawl/internal/extract"
	"github.com/shopcrawl/shopcrawl/internal/session"
	"github.com/shopcrawl/shopcrawl/internal/sites"
	"github.com/shopcrawl/shopcrawl/internal/storage"
)

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var ErrJobNotFound = errors.New("job not found")

// Runner executes one scrape session. The production runner opens a browser
// page; tests substitute a stub.
type Runner func(ctx context.Context, site *sites.Site, query string, cfg session.Config) ([]extract.Listing, error)

type Manager struct {
	db        *storage.DB
	registry  *sites.Registry
	publisher *events.Publisher
	runner    Runner
	sessCfg   session.Config
	logger    *slog.Logger
}

func NewManager(db *storage.DB, registry *sites.Registry, publisher *events.Publisher, runner Runner, sessCfg session.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		db:        db,
		registry:  registry,
		publisher: publisher,
		runner:    runner,
		sessCfg:   sessCfg,
		logger:    logger.With("component", "job_manager"),
	}
}

// Job is one queued scrape request.
type Job struct {
	ID            string     `json:"id"`
	Site          string     `json:"site"`
	Query         string     `json:"query"`
	MaxPages      int        `json:"max_pages"`
	Status        string     `json:"status"`
	PagesScraped  int        `json:"pages_scraped"`
	ListingsFound int        `json:"listings_found"`
	Error         string     `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// Stats summarizes the job table.
type Stats struct {
	TotalJobs     int `json:"total_jobs"`
	PendingJobs   int `json:"pending_jobs"`
	RunningJobs   int `json:"running_jobs"`
	CompletedJobs int `json:"completed_jobs"`
	FailedJobs    int `json:"failed_jobs"`
	TotalListings int `json:"total_listings"`
}

// CreateJob validates the site and queues a new job.
func (m *Manager) CreateJob(ctx context.Context, siteID, query string, maxPages int) (*Job, error) {
	if _, ok := m.registry.ByID(siteID); !ok {
		return nil, fmt.Errorf("unknown site %q", siteID)
	}
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if maxPages <= 0 {
		maxPages = m.sessCfg.PageBudget
		if maxPages <= 0 {
			maxPages = session.DefaultPageBudget
		}
	}

	job := &Job{
		ID:        uuid.New().String(),
		Site:      siteID,
		Query:     query,
		MaxPages:  maxPages,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	insert := `
		INSERT INTO scrape_jobs (id, site, query, max_pages, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := m.db.Exec(ctx, insert,
		job.ID, job.Site, job.Query, job.MaxPages, job.Status, job.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	m.logger.Info("job created", "id", job.ID, "site", siteID, "query", query)
	return job, nil
}

// GetJob retrieves a job by ID.
func (m *Manager) GetJob(ctx context.Context, jobID string) (*Job, error) {
	query := `
		SELECT id, site, query, max_pages, status,
		       pages_scraped, listings_found, error,
		       created_at, started_at, completed_at
		FROM scrape_jobs
		WHERE id = $1
	`
	job := &Job{}
	err := m.db.QueryRow(ctx, query, jobID).Scan(
		&job.ID, &job.Site, &job.Query, &job.MaxPages, &job.Status,
		&job.PagesScraped, &job.ListingsFound, &job.Error,
		&job.CreatedAt, &job.StartedAt, &job.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs returns the most recent jobs.
func (m *Manager) ListJobs(ctx context.Context) ([]*Job, error) {
	query := `
		SELECT id, site, query, max_pages, status,
		       pages_scraped, listings_found, error,
		       created_at, started_at, completed_at
		FROM scrape_jobs
		ORDER BY created_at DESC
		LIMIT 100
	`
	rows, err := m.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var out []*Job
	for rows.Next() {
		job := &Job{}
		if err := rows.Scan(
			&job.ID, &job.Site, &job.Query, &job.MaxPages, &job.Status,
			&job.PagesScraped, &job.ListingsFound, &job.Error,
			&job.CreatedAt, &job.StartedAt, &job.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// JobListings returns the listings a job collected, in collection order.
func (m *Manager) JobListings(ctx context.Context, jobID string) ([]extract.Listing, error) {
	query := `
		SELECT product_name, price, rating, product_url
		FROM job_listings
		WHERE job_id = $1
		ORDER BY ordinal
	`
	rows, err := m.db.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job listings: %w", err)
	}
	defer rows.Close()

	var out []extract.Listing
	for rows.Next() {
		var l extract.Listing
		if err := rows.Scan(&l.Name, &l.Price, &l.Rating, &l.URL); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetStats retrieves job table statistics.
func (m *Manager) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	query := `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN status = 'pending' THEN 1 END),
			COUNT(CASE WHEN status = 'running' THEN 1 END),
			COUNT(CASE WHEN status = 'completed' THEN 1 END),
			COUNT(CASE WHEN status = 'failed' THEN 1 END)
		FROM scrape_jobs
	`
	if err := m.db.QueryRow(ctx, query).Scan(
		&stats.TotalJobs, &stats.PendingJobs, &stats.RunningJobs,
		&stats.CompletedJobs, &stats.FailedJobs,
	); err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	if err := m.db.QueryRow(ctx, `SELECT COUNT(*) FROM job_listings`).Scan(&stats.TotalListings); err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}
	return stats, nil
}

func (m *Manager) updateJobStatus(ctx context.Context, jobID, status string, jobErr error) error {
	var query string
	var args []any

	now := time.Now()
	switch {
	case status == StatusRunning:
		query = `UPDATE scrape_jobs SET status = $1, started_at = $2 WHERE id = $3`
		args = []any{status, now, jobID}
	case status == StatusFailed && jobErr != nil:
		query = `UPDATE scrape_jobs SET status = $1, completed_at = $2, error = $3 WHERE id = $4`
		args = []any{status, now, jobErr.Error(), jobID}
	case status == StatusCompleted || status == StatusFailed:
		query = `UPDATE scrape_jobs SET status = $1, completed_at = $2 WHERE id = $3`
		args = []any{status, now, jobID}
	default:
		query = `UPDATE scrape_jobs SET status = $1 WHERE id = $2`
		args = []any{status, jobID}
	}

	_, err := m.db.Exec(ctx, query, args...)
	return err
}

func (m *Manager) updateJobProgress(ctx context.Context, jobID string, pagesScraped, listingsFound int) error {
	query := `UPDATE scrape_jobs SET pages_scraped = $1, listings_found = $2 WHERE id = $3`
	_, err := m.db.Exec(ctx, query, pagesScraped, listingsFound, jobID)
	return err
}

func (m *Manager) saveListings(ctx context.Context, jobID string, startOrdinal int, items []extract.Listing) error {
	query := `
		INSERT INTO job_listings (job_id, ordinal, product_name, price, rating, product_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (job_id, ordinal) DO NOTHING
	`
	for i, l := range items {
		if _, err := m.db.Exec(ctx, query, jobID, startOrdinal+i, l.Name, l.Price, l.Rating, l.URL); err != nil {
			return fmt.Errorf("failed to insert listing: %w", err)
		}
	}
	return nil
}
