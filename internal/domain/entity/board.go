package entity

import (
	"time"

	"fieldos-dispatch/pkg/utils"
)

// TechnicianColumn is one technician's ordered job list on the board
type TechnicianColumn struct {
	Technician Technician `json:"technician"`
	Jobs       []Job      `json:"jobs"`
}

// BoardSnapshot is the derived dispatch view for one target date: every job
// belonging to that date appears in exactly one column or in Unassigned.
// Snapshots are ephemeral, recomputed from the latest fetch and replaced
// wholesale, never mutated in place.
type BoardSnapshot struct {
	Date       utils.LocalDate    `json:"date"`
	Columns    []TechnicianColumn `json:"technicians"`
	Unassigned []Job              `json:"unassigned_jobs"`
	FetchedAt  time.Time          `json:"fetched_at"`
}

// JobCount returns the number of jobs on the board, across all partitions
func (b *BoardSnapshot) JobCount() int {
	n := len(b.Unassigned)
	for _, col := range b.Columns {
		n += len(col.Jobs)
	}
	return n
}

// DayBucket is the ordered set of jobs whose service window starts on one
// local calendar date
type DayBucket struct {
	Date utils.LocalDate `json:"date"`
	Jobs []Job           `json:"jobs"`
}

// Notification is a transient user-facing notice, never persisted
type Notification struct {
	Severity   string    `json:"severity"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	SeverityInfo  = "info"
	SeverityError = "error"
)
