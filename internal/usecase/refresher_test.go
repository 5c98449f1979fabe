package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"fieldos-dispatch/internal/domain/entity"
	"fieldos-dispatch/pkg/logger"
	"fieldos-dispatch/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var june1 = utils.LocalDate{Year: 2025, Month: time.June, Day: 1}

func newTestRefresher(jobs *fakeJobRepo, techs *fakeTechRepo, notif *recordingNotifier, interval time.Duration) *Refresher {
	return NewRefresher(jobs, techs, NewBoardBuilder(time.UTC), notif, nil, logger.NewNop(), interval)
}

func TestRefreshAppliesSnapshot(t *testing.T) {
	jobs := &fakeJobRepo{jobs: []entity.Job{
		jobAt("j1", "2025-06-01T08:00:00Z", strPtr("t1")),
		jobAt("j2", "2025-06-01T09:00:00Z", nil),
	}}
	notif := &recordingNotifier{}
	r := newTestRefresher(jobs, &fakeTechRepo{techs: roster}, notif, time.Minute)
	r.target = june1

	require.NoError(t, r.Refresh(context.Background()))

	snapshot, ok := r.Snapshot()
	require.True(t, ok)
	assert.Equal(t, june1, snapshot.Date)
	assert.Equal(t, 2, snapshot.JobCount())
	assert.Zero(t, notif.count())
}

func TestFailedRefreshKeepsLastGoodSnapshot(t *testing.T) {
	jobs := &fakeJobRepo{jobs: []entity.Job{jobAt("j1", "2025-06-01T08:00:00Z", nil)}}
	notif := &recordingNotifier{}
	r := newTestRefresher(jobs, &fakeTechRepo{techs: roster}, notif, time.Minute)
	r.target = june1

	require.NoError(t, r.Refresh(context.Background()))
	before, ok := r.Snapshot()
	require.True(t, ok)

	jobs.mu.Lock()
	jobs.listErr = errors.New("backend unavailable")
	jobs.mu.Unlock()

	err := r.Refresh(context.Background())
	require.Error(t, err)

	// Stale-but-visible: the previous snapshot is untouched
	after, ok := r.Snapshot()
	require.True(t, ok)
	assert.Same(t, before, after)

	// Exactly one notification per failed attempt
	assert.Equal(t, 1, notif.count())
	require.Error(t, r.Refresh(context.Background()))
	assert.Equal(t, 2, notif.count())
}

func TestSequenceGuardDropsStaleResponse(t *testing.T) {
	jobs := &fakeJobRepo{jobs: []entity.Job{jobAt("j1", "2025-06-01T08:00:00Z", nil)}}
	r := newTestRefresher(jobs, &fakeTechRepo{techs: roster}, &recordingNotifier{}, time.Minute)
	r.target = june1

	// A newer response has already been applied
	r.mu.Lock()
	r.appliedSeq = 10
	r.mu.Unlock()

	require.NoError(t, r.refreshOnce(context.Background(), june1))

	_, ok := r.Snapshot()
	assert.False(t, ok, "stale response must not be rendered")
}

func TestInFlightResponseForOldDateIsDropped(t *testing.T) {
	jobs := &fakeJobRepo{jobs: []entity.Job{jobAt("j1", "2025-06-01T08:00:00Z", nil)}}
	r := newTestRefresher(jobs, &fakeTechRepo{techs: roster}, &recordingNotifier{}, time.Minute)
	r.target = utils.LocalDate{Year: 2025, Month: time.June, Day: 2}

	// Response for a date that is no longer watched
	require.NoError(t, r.refreshOnce(context.Background(), june1))

	_, ok := r.Snapshot()
	assert.False(t, ok)
}

func TestStartPollsAndStopCancels(t *testing.T) {
	jobs := &fakeJobRepo{jobs: []entity.Job{jobAt("j1", "2025-06-01T08:00:00Z", nil)}}
	r := newTestRefresher(jobs, &fakeTechRepo{techs: roster}, &recordingNotifier{}, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.Start(ctx, june1)

	// Immediate fetch plus at least one tick
	assert.Eventually(t, func() bool { return jobs.calls() >= 2 }, time.Second, 5*time.Millisecond)

	r.Stop()
	// Let any already-started fetch finish before sampling
	time.Sleep(50 * time.Millisecond)
	settled := jobs.calls()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, jobs.calls(), "no fetches may run after Stop")
}

func TestWatchSwitchesDateAndDiscardsOldSnapshot(t *testing.T) {
	jobs := &fakeJobRepo{jobs: []entity.Job{jobAt("j1", "2025-06-01T08:00:00Z", nil)}}
	r := newTestRefresher(jobs, &fakeTechRepo{techs: roster}, &recordingNotifier{}, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.Start(ctx, june1)
	assert.Eventually(t, func() bool { _, ok := r.Snapshot(); return ok }, time.Second, 5*time.Millisecond)

	june2 := utils.LocalDate{Year: 2025, Month: time.June, Day: 2}
	r.Watch(june2)
	defer r.Stop()

	assert.Equal(t, june2, r.Target())
	assert.Eventually(t, func() bool {
		snapshot, ok := r.Snapshot()
		return ok && snapshot.Date == june2
	}, time.Second, 5*time.Millisecond)
}
