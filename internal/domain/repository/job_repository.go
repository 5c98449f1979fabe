package repository

import (
	"context"

	"fieldos-dispatch/internal/domain/entity"
	"fieldos-dispatch/pkg/utils"
)

// JobFilters narrows a job listing. Zero values mean no filtering.
type JobFilters struct {
	Status entity.JobStatus
	From   utils.LocalDate
	To     utils.LocalDate
}

// JobPayload carries the writable fields of a job for create/update calls.
// Nil pointers are omitted from the request body.
type JobPayload struct {
	Status             *entity.JobStatus   `json:"status,omitempty"`
	Priority           *entity.JobPriority `json:"priority,omitempty"`
	ServiceWindowStart *string             `json:"service_window_start,omitempty"`
	ServiceWindowEnd   *string             `json:"service_window_end,omitempty"`
	Description        *string             `json:"description,omitempty"`
	CustomerID         *string             `json:"customer_id,omitempty"`
	PropertyID         *string             `json:"property_id,omitempty"`
}

// JobRepository reads job snapshots from the backend and issues single-field
// mutation commands. The backend owns all job state.
type JobRepository interface {
	ListJobs(ctx context.Context, filters JobFilters) ([]entity.Job, error)
	CreateJob(ctx context.Context, payload JobPayload) (*entity.Job, error)
	UpdateJob(ctx context.Context, jobID string, payload JobPayload) (*entity.Job, error)
	// AssignJob sets or clears the job's technician. A nil technicianID
	// unassigns. The call is idempotent on the backend.
	AssignJob(ctx context.Context, jobID string, technicianID *string) error
	// MarkEnRoute transitions the job to EN_ROUTE; the backend dispatches the
	// customer notification as an opaque side effect.
	MarkEnRoute(ctx context.Context, jobID string) error
}
