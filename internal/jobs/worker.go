package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shopcrawl/shopcrawl/internal/events"
	"github.com/shopcrawl/shopcrawl/internal/extract"
)

const workerPollInterval = 5 * time.Second

// StartWorker polls for pending jobs and runs them sequentially. Sessions
// drive a single browser, so only one job runs at a time.
func (m *Manager) StartWorker(ctx context.Context) {
	logger := m.logger.With("component", "job_worker")
	logger.Info("worker started", "poll_interval", workerPollInterval)

	ticker := time.NewTicker(workerPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopped")
			return
		case <-ticker.C:
			job, err := m.claimNextJob(ctx)
			if err != nil {
				logger.Error("failed to claim job", "error", err)
				continue
			}
			if job == nil {
				continue
			}
			m.runJob(ctx, job)
		}
	}
}

// claimNextJob atomically moves the oldest pending job to running. SKIP
// LOCKED keeps concurrent workers from grabbing the same row.
func (m *Manager) claimNextJob(ctx context.Context) (*Job, error) {
	query := `
		UPDATE scrape_jobs
		SET status = 'running', started_at = NOW()
		WHERE id = (
			SELECT id FROM scrape_jobs
			WHERE status = 'pending'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, site, query, max_pages, status, created_at
	`
	job := &Job{}
	err := m.db.QueryRow(ctx, query).Scan(
		&job.ID, &job.Site, &job.Query, &job.MaxPages, &job.Status, &job.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (m *Manager) runJob(ctx context.Context, job *Job) {
	logger := m.logger.With("job_id", job.ID, "site", job.Site, "query", job.Query)
	logger.Info("job started")

	site, ok := m.registry.ByID(job.Site)
	if !ok {
		logger.Error("job references unknown site")
		_ = m.updateJobStatus(ctx, job.ID, StatusFailed, errors.New("unknown site "+job.Site))
		return
	}

	m.publish(ctx, events.EventTypeScrapeStarted, job, 0)

	total := 0
	cfg := m.sessCfg
	cfg.PageBudget = job.MaxPages
	cfg.Notify = func(msg string) {
		logger.Warn("block detected", "message", msg)
		m.publish(ctx, events.EventTypeBlockDetected, job, total)
	}
	cfg.OnPage = func(pageIndex int, items []extract.Listing) {
		if err := m.saveListings(ctx, job.ID, total, items); err != nil {
			logger.Error("failed to save listings", "page", pageIndex, "error", err)
		}
		total += len(items)
		if err := m.updateJobProgress(ctx, job.ID, pageIndex+1, total); err != nil {
			logger.Error("failed to update progress", "error", err)
		}
	}

	listings, err := m.runner(ctx, site, job.Query, cfg)
	if err != nil {
		logger.Error("job failed", "error", err)
		if err := m.updateJobStatus(ctx, job.ID, StatusFailed, err); err != nil {
			logger.Error("failed to mark job failed", "error", err)
		}
		return
	}

	// A persistent block yields zero listings but is not an infrastructure
	// failure, so the job still completes.
	if err := m.updateJobStatus(ctx, job.ID, StatusCompleted, nil); err != nil {
		logger.Error("failed to mark job completed", "error", err)
	}
	m.publish(ctx, events.EventTypeScrapeCompleted, job, len(listings))
	logger.Info("job completed", "listings", len(listings))
}

func (m *Manager) publish(ctx context.Context, eventType events.EventType, job *Job, listingsFound int) {
	if m.publisher == nil {
		return
	}
	err := m.publisher.Publish(ctx, &events.Payload{
		EventType:     eventType,
		JobID:         job.ID,
		Site:          job.Site,
		Query:         job.Query,
		ListingsFound: listingsFound,
	})
	if err != nil {
		m.logger.Error("failed to publish event", "event_type", eventType, "error", err)
	}
}
