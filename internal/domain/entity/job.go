package entity

import (
	"time"
)

// JobStatus is the lifecycle state of a job, owned by the backend
type JobStatus string

const (
	StatusScheduled JobStatus = "SCHEDULED"
	StatusBooked    JobStatus = "BOOKED"
	StatusEnRoute   JobStatus = "EN_ROUTE"
	StatusOnSite    JobStatus = "ON_SITE"
	StatusCompleted JobStatus = "COMPLETED"
	StatusNoShow    JobStatus = "NO_SHOW"
	StatusCancelled JobStatus = "CANCELLED"
)

// JobPriority orders jobs by urgency
type JobPriority string

const (
	PriorityEmergency JobPriority = "EMERGENCY"
	PriorityHigh      JobPriority = "HIGH"
	PriorityNormal    JobPriority = "NORMAL"
)

// CustomerSnapshot is the denormalized customer info carried on a job for display
type CustomerSnapshot struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

// PropertySnapshot is the denormalized service address carried on a job
type PropertySnapshot struct {
	ID      string `json:"id,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

// Job is a scheduled unit of field work as read from the backend. The service
// window is a half-open interval; a job with no parseable start is kept for
// list views but excluded from all day buckets.
type Job struct {
	ID                   string            `json:"id"`
	Status               JobStatus         `json:"status"`
	Priority             JobPriority       `json:"priority"`
	ServiceWindowStart   *time.Time        `json:"service_window_start"`
	ServiceWindowEnd     *time.Time        `json:"service_window_end"`
	AssignedTechnicianID *string           `json:"assigned_technician_id"`
	Description          string            `json:"description,omitempty"`
	Customer             *CustomerSnapshot `json:"customer,omitempty"`
	Property             *PropertySnapshot `json:"property,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// Assigned reports whether the job currently references a technician
func (j *Job) Assigned() bool {
	return j.AssignedTechnicianID != nil && *j.AssignedTechnicianID != ""
}
