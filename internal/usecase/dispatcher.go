package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fieldos-dispatch/internal/domain/entity"
	"fieldos-dispatch/internal/domain/repository"
	"fieldos-dispatch/pkg/logger"
	"fieldos-dispatch/pkg/metrics"
)

// ErrCommandInFlight is returned when a mutation for the same job is already
// pending. It mirrors the disabled-button state in the dashboard: one pending
// command per job, no queueing.
var ErrCommandInFlight = errors.New("a command for this job is already in flight")

// Dispatcher issues job mutation commands against the backend. There is no
// optimistic local patch: on success the whole board is re-fetched so views
// stay consistent with server-computed side effects, on failure the rendered
// state is left untouched and the failure is notified once.
type Dispatcher struct {
	jobs      repository.JobRepository
	refresher *Refresher
	notifier  repository.Notifier
	metrics   *metrics.Metrics
	logger    logger.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewDispatcher creates a dispatcher
func NewDispatcher(jobs repository.JobRepository, refresher *Refresher, notif repository.Notifier, m *metrics.Metrics, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		jobs:      jobs,
		refresher: refresher,
		notifier:  notif,
		metrics:   m,
		logger:    log,
		inFlight:  make(map[string]bool),
	}
}

func (d *Dispatcher) begin(jobID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight[jobID] {
		return ErrCommandInFlight
	}
	d.inFlight[jobID] = true
	return nil
}

func (d *Dispatcher) end(jobID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, jobID)
}

// Assign sets or clears a job's technician. A nil technicianID unassigns.
// Repeating the call with the same value converges to the same state.
func (d *Dispatcher) Assign(ctx context.Context, jobID string, technicianID *string) error {
	if err := d.begin(jobID); err != nil {
		return err
	}
	defer d.end(jobID)

	if d.metrics != nil {
		d.metrics.Assignments.Inc()
	}

	if err := d.jobs.AssignJob(ctx, jobID, technicianID); err != nil {
		return d.failCommand(jobID, "Could not update the assignment.", err)
	}

	d.logger.Info("Assignment confirmed", "jobID", jobID, "technicianID", strOrNull(technicianID))
	d.refreshAfter(ctx)
	return nil
}

// MarkEnRoute transitions the job to EN_ROUTE. The customer notification is a
// server-side side effect this layer never sees.
func (d *Dispatcher) MarkEnRoute(ctx context.Context, jobID string) error {
	if err := d.begin(jobID); err != nil {
		return err
	}
	defer d.end(jobID)

	if err := d.jobs.MarkEnRoute(ctx, jobID); err != nil {
		return d.failCommand(jobID, "Could not mark the technician en route.", err)
	}

	d.logger.Info("Job marked en route", "jobID", jobID)
	d.refreshAfter(ctx)
	return nil
}

// CreateJob creates a job and refreshes the board
func (d *Dispatcher) CreateJob(ctx context.Context, payload repository.JobPayload) (*entity.Job, error) {
	job, err := d.jobs.CreateJob(ctx, payload)
	if err != nil {
		return nil, d.failCommand("", "Could not create the job.", err)
	}
	d.refreshAfter(ctx)
	return job, nil
}

// UpdateJob patches a job and refreshes the board
func (d *Dispatcher) UpdateJob(ctx context.Context, jobID string, payload repository.JobPayload) (*entity.Job, error) {
	if err := d.begin(jobID); err != nil {
		return nil, err
	}
	defer d.end(jobID)

	job, err := d.jobs.UpdateJob(ctx, jobID, payload)
	if err != nil {
		return nil, d.failCommand(jobID, "Could not update the job.", err)
	}
	d.refreshAfter(ctx)
	return job, nil
}

// refreshAfter re-fetches the board after a confirmed mutation. A failed
// refresh is already notified by the refresher; the command itself succeeded.
func (d *Dispatcher) refreshAfter(ctx context.Context) {
	if d.refresher == nil {
		return
	}
	if err := d.refresher.Refresh(ctx); err != nil {
		d.logger.Warn("Post-command board refresh failed", "error", err)
	}
}

func (d *Dispatcher) failCommand(jobID, message string, err error) error {
	if d.metrics != nil {
		d.metrics.AssignmentFailures.Inc()
	}
	d.logger.Error("Command failed", "jobID", jobID, "error", err)
	d.notifier.Notify(entity.Notification{
		Severity:   entity.SeverityError,
		Message:    message,
		OccurredAt: time.Now(),
	})
	return fmt.Errorf("command failed: %w", err)
}

func strOrNull(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}
