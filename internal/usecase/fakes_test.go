package usecase

import (
	"context"
	"sync"

	"fieldos-dispatch/internal/domain/entity"
	"fieldos-dispatch/internal/domain/repository"
)

// fakeJobRepo is an in-memory stand-in for the FieldOS backend
type fakeJobRepo struct {
	mu        sync.Mutex
	jobs      []entity.Job
	listErr   error
	assignErr error
	listCalls int
	assigns   int
}

func (f *fakeJobRepo) ListJobs(ctx context.Context, filters repository.JobFilters) ([]entity.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]entity.Job, len(f.jobs))
	copy(out, f.jobs)
	return out, nil
}

func (f *fakeJobRepo) CreateJob(ctx context.Context, payload repository.JobPayload) (*entity.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := entity.Job{ID: "created"}
	f.jobs = append(f.jobs, job)
	return &job, nil
}

func (f *fakeJobRepo) UpdateJob(ctx context.Context, jobID string, payload repository.JobPayload) (*entity.Job, error) {
	return &entity.Job{ID: jobID}, nil
}

func (f *fakeJobRepo) AssignJob(ctx context.Context, jobID string, technicianID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assigns++
	if f.assignErr != nil {
		return f.assignErr
	}
	for i := range f.jobs {
		if f.jobs[i].ID == jobID {
			f.jobs[i].AssignedTechnicianID = technicianID
		}
	}
	return nil
}

func (f *fakeJobRepo) MarkEnRoute(ctx context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.jobs {
		if f.jobs[i].ID == jobID {
			f.jobs[i].Status = entity.StatusEnRoute
		}
	}
	return nil
}

func (f *fakeJobRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakeTechRepo struct {
	techs   []entity.Technician
	listErr error
}

func (f *fakeTechRepo) ListTechnicians(ctx context.Context) ([]entity.Technician, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.techs, nil
}

// recordingNotifier captures transient notices for assertions
type recordingNotifier struct {
	mu      sync.Mutex
	notices []entity.Notification
}

func (n *recordingNotifier) Notify(notice entity.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices)
}
