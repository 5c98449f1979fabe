package usecase

import (
	"context"
	"sync"
	"time"

	"fieldos-dispatch/internal/domain/entity"
	"fieldos-dispatch/internal/domain/repository"
	"fieldos-dispatch/pkg/logger"
	"fieldos-dispatch/pkg/metrics"
	"fieldos-dispatch/pkg/utils"
)

// Refresher keeps one watched date's board snapshot fresh: immediate fetch on
// start, then a fixed-interval re-fetch. Switching the watched date cancels
// the previous loop before the next one starts, so intervals never overlap.
//
// A slow response can still race a newer one, so every fetch carries a
// sequence number and a response is applied only if nothing newer has been
// applied for the same date. A late stale response is dropped, never rendered.
type Refresher struct {
	jobs     repository.JobRepository
	techs    repository.TechnicianRepository
	builder  *BoardBuilder
	notifier repository.Notifier
	metrics  *metrics.Metrics
	logger   logger.Logger
	interval time.Duration

	mu         sync.Mutex
	baseCtx    context.Context
	cancelLoop context.CancelFunc
	target     utils.LocalDate
	nextSeq    uint64
	appliedSeq uint64
	snapshot   *entity.BoardSnapshot
}

// NewRefresher creates a polling refresher with the given interval
func NewRefresher(
	jobs repository.JobRepository,
	techs repository.TechnicianRepository,
	builder *BoardBuilder,
	notif repository.Notifier,
	m *metrics.Metrics,
	log logger.Logger,
	interval time.Duration,
) *Refresher {
	return &Refresher{
		jobs:     jobs,
		techs:    techs,
		builder:  builder,
		notifier: notif,
		metrics:  m,
		logger:   log,
		interval: interval,
	}
}

// Start begins polling for the given date. It returns immediately; the loop
// runs until ctx is cancelled or the watched date changes.
func (r *Refresher) Start(ctx context.Context, date utils.LocalDate) {
	r.mu.Lock()
	r.baseCtx = ctx
	r.mu.Unlock()
	r.Watch(date)
}

// Watch switches the watched date. The previous poll loop is cancelled before
// the new one starts; the stored snapshot for the old date is discarded.
func (r *Refresher) Watch(date utils.LocalDate) {
	r.mu.Lock()
	if r.cancelLoop != nil {
		r.cancelLoop()
	}
	base := r.baseCtx
	if base == nil {
		base = context.Background()
	}
	loopCtx, cancel := context.WithCancel(base)
	r.cancelLoop = cancel
	if r.target != date {
		r.target = date
		r.snapshot = nil
		r.appliedSeq = 0
	}
	r.mu.Unlock()

	r.logger.Info("Watching dispatch date", "date", date.String())
	go r.loop(loopCtx, date)
}

// Stop cancels the current poll loop
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelLoop != nil {
		r.cancelLoop()
		r.cancelLoop = nil
	}
}

func (r *Refresher) loop(ctx context.Context, date utils.LocalDate) {
	r.refreshOnce(ctx, date)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refreshOnce(ctx, date)
		}
	}
}

// Refresh re-fetches the currently watched date once, outside the timer.
// Mutation commands call this after the backend confirms a change.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	date := r.target
	r.mu.Unlock()
	return r.refreshOnce(ctx, date)
}

func (r *Refresher) refreshOnce(ctx context.Context, date utils.LocalDate) error {
	r.mu.Lock()
	r.nextSeq++
	seq := r.nextSeq
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.BoardRefreshes.Inc()
	}

	jobs, err := r.jobs.ListJobs(ctx, repository.JobFilters{From: date, To: date})
	if err != nil {
		return r.failRefresh(date, err)
	}
	techs, err := r.techs.ListTechnicians(ctx)
	if err != nil {
		return r.failRefresh(date, err)
	}

	snapshot := r.builder.GroupForDate(jobs, techs, date)

	r.mu.Lock()
	defer r.mu.Unlock()
	if date != r.target {
		// The watched date moved on while this fetch was in flight
		if r.metrics != nil {
			r.metrics.StaleDropped.Inc()
		}
		return nil
	}
	if seq <= r.appliedSeq {
		if r.metrics != nil {
			r.metrics.StaleDropped.Inc()
		}
		r.logger.Debug("Dropped stale board response", "date", date.String(), "seq", seq)
		return nil
	}
	r.appliedSeq = seq
	r.snapshot = snapshot
	r.logger.Debug("Applied board snapshot", "date", date.String(), "jobs", snapshot.JobCount())
	return nil
}

// failRefresh notifies exactly once per failed attempt and leaves the last
// good snapshot in place (stale-but-visible, never blank).
func (r *Refresher) failRefresh(date utils.LocalDate, err error) error {
	if r.metrics != nil {
		r.metrics.RefreshFailures.Inc()
	}
	r.logger.Error("Board refresh failed", "date", date.String(), "error", err)
	r.notifier.Notify(entity.Notification{
		Severity:   entity.SeverityError,
		Message:    "Could not refresh the dispatch board. Showing the last loaded view.",
		OccurredAt: time.Now(),
	})
	return err
}

// Snapshot returns the latest applied snapshot for the watched date, or false
// when none has been applied yet
func (r *Refresher) Snapshot() (*entity.BoardSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshot == nil {
		return nil, false
	}
	return r.snapshot, true
}

// Target returns the currently watched date
func (r *Refresher) Target() utils.LocalDate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}
