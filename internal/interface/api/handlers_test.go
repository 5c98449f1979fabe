package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"fieldos-dispatch/internal/domain/entity"
	"fieldos-dispatch/internal/domain/repository"
	"fieldos-dispatch/internal/interface/notifier"
	"fieldos-dispatch/internal/usecase"
	"fieldos-dispatch/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJobRepo struct {
	mu        sync.Mutex
	jobs      []entity.Job
	assignErr error
	assigned  map[string]*string
}

func (s *stubJobRepo) ListJobs(ctx context.Context, filters repository.JobFilters) ([]entity.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Job, len(s.jobs))
	copy(out, s.jobs)
	return out, nil
}

func (s *stubJobRepo) CreateJob(ctx context.Context, payload repository.JobPayload) (*entity.Job, error) {
	return &entity.Job{ID: "new-job", Status: entity.StatusScheduled}, nil
}

func (s *stubJobRepo) UpdateJob(ctx context.Context, jobID string, payload repository.JobPayload) (*entity.Job, error) {
	return &entity.Job{ID: jobID}, nil
}

func (s *stubJobRepo) AssignJob(ctx context.Context, jobID string, technicianID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assignErr != nil {
		return s.assignErr
	}
	if s.assigned == nil {
		s.assigned = make(map[string]*string)
	}
	s.assigned[jobID] = technicianID
	return nil
}

func (s *stubJobRepo) MarkEnRoute(ctx context.Context, jobID string) error { return nil }

type stubTechRepo struct{ techs []entity.Technician }

func (s *stubTechRepo) ListTechnicians(ctx context.Context) ([]entity.Technician, error) {
	return s.techs, nil
}

func newTestServer(t *testing.T, jobs *stubJobRepo, techs *stubTechRepo) *httptest.Server {
	t.Helper()
	log := logger.NewNop()
	builder := usecase.NewBoardBuilder(time.UTC)
	notif := notifier.NewLogNotifier(log)
	refresher := usecase.NewRefresher(jobs, techs, builder, notif, nil, log, time.Minute)
	dispatcher := usecase.NewDispatcher(jobs, refresher, notif, nil, log)
	handler := NewHandler(refresher, dispatcher, builder, jobs, techs, log)

	server := httptest.NewServer(NewRouter(handler, nil))
	t.Cleanup(server.Close)
	return server
}

func decodeData(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.True(t, env.Success)
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
}

func seedJob(id, start string, techID *string) entity.Job {
	parsed, _ := time.Parse(time.RFC3339, start)
	return entity.Job{ID: id, Status: entity.StatusScheduled, ServiceWindowStart: &parsed, AssignedTechnicianID: techID}
}

func TestGetBoardGroupsOnDemand(t *testing.T) {
	techID := "t1"
	jobs := &stubJobRepo{jobs: []entity.Job{
		seedJob("j1", "2025-06-01T08:00:00Z", &techID),
		seedJob("j2", "2025-06-01T09:00:00Z", nil),
	}}
	techs := &stubTechRepo{techs: []entity.Technician{{ID: "t1", Name: "Alma Reyes", Active: true}}}
	server := newTestServer(t, jobs, techs)

	resp, err := http.Get(server.URL + "/api/v1/board/2025-06-01")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var board entity.BoardSnapshot
	decodeData(t, resp, &board)
	require.Len(t, board.Columns, 1)
	assert.Len(t, board.Columns[0].Jobs, 1)
	assert.Len(t, board.Unassigned, 1)
}

func TestGetBoardRejectsBadDate(t *testing.T) {
	server := newTestServer(t, &stubJobRepo{}, &stubTechRepo{})

	resp, err := http.Get(server.URL + "/api/v1/board/06-01-2025")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetCalendar(t *testing.T) {
	jobs := &stubJobRepo{jobs: []entity.Job{
		seedJob("j1", "2025-06-01T08:00:00Z", nil),
		seedJob("j2", "2025-06-01T09:00:00Z", nil),
		seedJob("j3", "2025-06-15T09:00:00Z", nil),
	}}
	server := newTestServer(t, jobs, &stubTechRepo{})

	resp, err := http.Get(server.URL + "/api/v1/calendar/2025/6")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cal calendarResponse
	decodeData(t, resp, &cal)
	assert.Equal(t, 30, cal.Grid.DaysInMonth)
	assert.Equal(t, 0, cal.Grid.LeadingBlanks)
	require.Len(t, cal.Days, 2)
	assert.Equal(t, 2, cal.Days[0].JobCount)
	assert.Equal(t, 1, cal.Days[1].JobCount)
}

func TestGetCalendarRejectsBadMonth(t *testing.T) {
	server := newTestServer(t, &stubJobRepo{}, &stubTechRepo{})

	resp, err := http.Get(server.URL + "/api/v1/calendar/2025/13")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAssignEndpoint(t *testing.T) {
	jobs := &stubJobRepo{jobs: []entity.Job{seedJob("j1", "2025-06-01T08:00:00Z", nil)}}
	server := newTestServer(t, jobs, &stubTechRepo{})

	resp, err := http.Post(server.URL+"/api/v1/jobs/j1/assign", "application/json", strings.NewReader(`{"technician_id":"t1"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, jobs.assigned["j1"])
	assert.Equal(t, "t1", *jobs.assigned["j1"])

	// null unassigns
	resp, err = http.Post(server.URL+"/api/v1/jobs/j1/assign", "application/json", strings.NewReader(`{"technician_id":null}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, jobs.assigned["j1"])
}

func TestAssignEndpointBackendRejection(t *testing.T) {
	jobs := &stubJobRepo{assignErr: errors.New("boom")}
	server := newTestServer(t, jobs, &stubTechRepo{})

	resp, err := http.Post(server.URL+"/api/v1/jobs/j1/assign", "application/json", strings.NewReader(`{"technician_id":"t1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestCreateJobValidation(t *testing.T) {
	server := newTestServer(t, &stubJobRepo{}, &stubTechRepo{})

	// Missing required fields
	resp, err := http.Post(server.URL+"/api/v1/jobs", "application/json", strings.NewReader(`{"description":"leaky faucet"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := `{
		"customer_id": "c1",
		"service_window_start": "2025-06-01T08:00:00Z",
		"service_window_end": "2025-06-01T10:00:00Z",
		"priority": "HIGH"
	}`
	resp, err = http.Post(server.URL+"/api/v1/jobs", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var job entity.Job
	decodeData(t, resp, &job)
	assert.Equal(t, "new-job", job.ID)
}

func TestListTechniciansActiveFilter(t *testing.T) {
	techs := &stubTechRepo{techs: []entity.Technician{
		{ID: "t1", Name: "Alma Reyes", Active: true},
		{ID: "t2", Name: "Pat Doyle", Active: false},
	}}
	server := newTestServer(t, &stubJobRepo{}, techs)

	resp, err := http.Get(server.URL + "/api/v1/technicians?active=true")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got []entity.Technician
	decodeData(t, resp, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
}

func TestWatchBoardEndpoint(t *testing.T) {
	jobs := &stubJobRepo{jobs: []entity.Job{seedJob("j1", "2025-06-01T08:00:00Z", nil)}}
	server := newTestServer(t, jobs, &stubTechRepo{})

	resp, err := http.Post(server.URL+"/api/v1/board/watch", "application/json", strings.NewReader(`{"date":"2025-06-01"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, err = http.Post(server.URL+"/api/v1/board/watch", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
