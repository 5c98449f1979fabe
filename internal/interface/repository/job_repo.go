package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fieldos-dispatch/internal/domain/entity"
	"fieldos-dispatch/internal/domain/repository"
	"fieldos-dispatch/pkg/logger"
	"fieldos-dispatch/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FieldOSJobRepository implements repository.JobRepository against the
// FieldOS REST backend
type FieldOSJobRepository struct {
	client   *Client
	loc      *time.Location
	validate *validator.Validate
	logger   logger.Logger
}

// NewFieldOSJobRepository creates a new job repository. loc is the viewer
// time zone used to interpret zone-less service window timestamps.
func NewFieldOSJobRepository(client *Client, loc *time.Location, log logger.Logger) repository.JobRepository {
	return &FieldOSJobRepository{
		client:   client,
		loc:      loc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   log,
	}
}

// jobWire is the job shape on the wire. Timestamps stay strings here so one
// malformed record is excluded at the boundary instead of failing the whole
// list decode.
type jobWire struct {
	ID                   string                   `json:"id" validate:"required"`
	Status               string                   `json:"status"`
	Priority             string                   `json:"priority"`
	ServiceWindowStart   string                   `json:"service_window_start"`
	ServiceWindowEnd     string                   `json:"service_window_end"`
	AssignedTechnicianID *string                  `json:"assigned_technician_id"`
	Description          string                   `json:"description"`
	Customer             *entity.CustomerSnapshot `json:"customer"`
	Property             *entity.PropertySnapshot `json:"property"`
	CreatedAt            string                   `json:"created_at"`
	UpdatedAt            string                   `json:"updated_at"`
}

var errInvalidWindow = errors.New("service window end is not after start")

// decodeJob validates one wire record and converts it to the domain entity
func (r *FieldOSJobRepository) decodeJob(w jobWire) (entity.Job, error) {
	if err := r.validate.Struct(w); err != nil {
		return entity.Job{}, err
	}

	job := entity.Job{
		ID:                   w.ID,
		Status:               entity.JobStatus(w.Status),
		Priority:             entity.JobPriority(w.Priority),
		AssignedTechnicianID: w.AssignedTechnicianID,
		Description:          w.Description,
		Customer:             w.Customer,
		Property:             w.Property,
	}

	if start, ok := utils.ParseServiceTime(w.ServiceWindowStart, r.loc); ok {
		job.ServiceWindowStart = &start
	}
	if end, ok := utils.ParseServiceTime(w.ServiceWindowEnd, r.loc); ok {
		job.ServiceWindowEnd = &end
	}
	// Half-open interval: start < end whenever both are present
	if job.ServiceWindowStart != nil && job.ServiceWindowEnd != nil && !job.ServiceWindowStart.Before(*job.ServiceWindowEnd) {
		return entity.Job{}, errInvalidWindow
	}

	if created, err := time.Parse(time.RFC3339, w.CreatedAt); err == nil {
		job.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339, w.UpdatedAt); err == nil {
		job.UpdatedAt = updated
	}

	return job, nil
}

// decodeJobs converts a wire list, excluding invalid records with a warning
func (r *FieldOSJobRepository) decodeJobs(wires []jobWire) []entity.Job {
	jobs := make([]entity.Job, 0, len(wires))
	for _, w := range wires {
		job, err := r.decodeJob(w)
		if err != nil {
			r.logger.Warn("Excluding invalid job record", "jobID", w.ID, "error", err)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// ListJobs fetches jobs matching the filters. Server order is preserved.
func (r *FieldOSJobRepository) ListJobs(ctx context.Context, filters repository.JobFilters) ([]entity.Job, error) {
	query := url.Values{}
	if filters.Status != "" {
		query.Set("status", string(filters.Status))
	}
	if !filters.From.IsZero() {
		query.Set("from", filters.From.String())
	}
	if !filters.To.IsZero() {
		query.Set("to", filters.To.String())
	}

	var wires []jobWire
	if err := r.client.do(ctx, "list_jobs", http.MethodGet, "/api/v1/jobs", query, nil, &wires, nil); err != nil {
		return nil, err
	}

	return r.decodeJobs(wires), nil
}

// CreateJob creates a job and returns the server's view of it
func (r *FieldOSJobRepository) CreateJob(ctx context.Context, payload repository.JobPayload) (*entity.Job, error) {
	var wire jobWire
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	if err := r.client.do(ctx, "create_job", http.MethodPost, "/api/v1/jobs", nil, payload, &wire, headers); err != nil {
		return nil, err
	}

	job, err := r.decodeJob(wire)
	if err != nil {
		return nil, fmt.Errorf("backend returned invalid job: %w", err)
	}
	return &job, nil
}

// UpdateJob patches writable job fields and returns the server's view
func (r *FieldOSJobRepository) UpdateJob(ctx context.Context, jobID string, payload repository.JobPayload) (*entity.Job, error) {
	var wire jobWire
	if err := r.client.do(ctx, "update_job", http.MethodPatch, "/api/v1/jobs/"+jobID, nil, payload, &wire, nil); err != nil {
		return nil, err
	}

	job, err := r.decodeJob(wire)
	if err != nil {
		return nil, fmt.Errorf("backend returned invalid job: %w", err)
	}
	return &job, nil
}

// AssignJob sets or clears the job's technician. The idempotency key makes a
// timed-out retry safe on the backend.
func (r *FieldOSJobRepository) AssignJob(ctx context.Context, jobID string, technicianID *string) error {
	body := map[string]interface{}{"technician_id": technicianID}
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	return r.client.do(ctx, "assign_job", http.MethodPost, "/api/v1/jobs/"+jobID+"/assign", nil, body, nil, headers)
}

// MarkEnRoute transitions the job to EN_ROUTE. The customer SMS is dispatched
// server-side.
func (r *FieldOSJobRepository) MarkEnRoute(ctx context.Context, jobID string) error {
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	return r.client.do(ctx, "mark_en_route", http.MethodPost, "/api/v1/jobs/"+jobID+"/en-route", nil, nil, nil, headers)
}
