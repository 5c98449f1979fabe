package usecase

import (
	"sort"
	"time"

	"fieldos-dispatch/internal/domain/entity"
	"fieldos-dispatch/pkg/utils"
)

// BoardBuilder derives dispatch views from a flat job list. All methods are
// pure: they never mutate their inputs and have no error path — records
// without a parseable service window start are excluded, never fatal.
type BoardBuilder struct {
	loc *time.Location
}

// NewBoardBuilder creates a builder that buckets by calendar day in loc
func NewBoardBuilder(loc *time.Location) *BoardBuilder {
	return &BoardBuilder{loc: loc}
}

// Location returns the viewer time zone the builder buckets in
func (b *BoardBuilder) Location() *time.Location {
	return b.loc
}

// BucketDate returns the local calendar date a job belongs to, or false when
// the job has no parseable start and belongs to no bucket.
func (b *BoardBuilder) BucketDate(job *entity.Job) (utils.LocalDate, bool) {
	if job.ServiceWindowStart == nil {
		return utils.LocalDate{}, false
	}
	return utils.DateOf(*job.ServiceWindowStart, b.loc), true
}

// GroupForDate partitions the jobs belonging to the target date into one
// column per roster technician plus an unassigned list. Every matching job
// lands in exactly one partition; a job referencing a technician missing from
// the roster falls to unassigned so it stays visible. Input order is kept
// inside each bucket (the server sorts by start time).
func (b *BoardBuilder) GroupForDate(jobs []entity.Job, techs []entity.Technician, target utils.LocalDate) *entity.BoardSnapshot {
	snapshot := &entity.BoardSnapshot{
		Date:       target,
		Columns:    make([]entity.TechnicianColumn, len(techs)),
		Unassigned: make([]entity.Job, 0),
		FetchedAt:  time.Now(),
	}

	columnIndex := make(map[string]int, len(techs))
	for i, tech := range techs {
		snapshot.Columns[i] = entity.TechnicianColumn{Technician: tech, Jobs: make([]entity.Job, 0)}
		columnIndex[tech.ID] = i
	}

	for _, job := range jobs {
		date, ok := b.BucketDate(&job)
		if !ok || date != target {
			continue
		}
		if job.Assigned() {
			if i, known := columnIndex[*job.AssignedTechnicianID]; known {
				snapshot.Columns[i].Jobs = append(snapshot.Columns[i].Jobs, job)
				continue
			}
			// Stale technician reference: keep the job visible
		}
		snapshot.Unassigned = append(snapshot.Unassigned, job)
	}

	return snapshot
}

// BucketByDay groups jobs into per-date buckets for the calendar view,
// ordered by date ascending. Jobs without a parseable start are skipped.
func (b *BoardBuilder) BucketByDay(jobs []entity.Job) []entity.DayBucket {
	byDate := make(map[utils.LocalDate][]entity.Job)
	for _, job := range jobs {
		date, ok := b.BucketDate(&job)
		if !ok {
			continue
		}
		byDate[date] = append(byDate[date], job)
	}

	buckets := make([]entity.DayBucket, 0, len(byDate))
	for date, dayJobs := range byDate {
		buckets = append(buckets, entity.DayBucket{Date: date, Jobs: dayJobs})
	}
	sort.Slice(buckets, func(i, j int) bool {
		di, dj := buckets[i].Date, buckets[j].Date
		if di.Year != dj.Year {
			return di.Year < dj.Year
		}
		if di.Month != dj.Month {
			return di.Month < dj.Month
		}
		return di.Day < dj.Day
	})

	return buckets
}

// ActiveTechnicians filters the roster down to technicians eligible for
// assignment pickers
func ActiveTechnicians(techs []entity.Technician) []entity.Technician {
	active := make([]entity.Technician, 0, len(techs))
	for _, tech := range techs {
		if tech.Active {
			active = append(active, tech)
		}
	}
	return active
}
