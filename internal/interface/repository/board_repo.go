package repository

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"fieldos-dispatch/internal/domain/entity"
	"fieldos-dispatch/internal/domain/repository"
	"fieldos-dispatch/pkg/logger"
	"fieldos-dispatch/pkg/utils"
)

// FieldOSBoardRepository implements repository.BoardRepository against the
// backend's precomputed dispatch board endpoint
type FieldOSBoardRepository struct {
	client *Client
	jobs   *FieldOSJobRepository
	logger logger.Logger
}

// NewFieldOSBoardRepository creates a new board repository. It shares the job
// repository's wire decoding so both shapes apply the same boundary checks.
func NewFieldOSBoardRepository(client *Client, jobs repository.JobRepository, log logger.Logger) repository.BoardRepository {
	return &FieldOSBoardRepository{
		client: client,
		jobs:   jobs.(*FieldOSJobRepository),
		logger: log,
	}
}

// boardWire is the server-precomputed board shape
type boardWire struct {
	Technicians []struct {
		ID     string    `json:"id"`
		Name   string    `json:"name"`
		Active bool      `json:"active"`
		Jobs   []jobWire `json:"jobs"`
	} `json:"technicians"`
	UnassignedJobs []jobWire `json:"unassigned_jobs"`
}

// GetDispatchBoard fetches the server's grouping for one date
func (r *FieldOSBoardRepository) GetDispatchBoard(ctx context.Context, date utils.LocalDate) (*entity.BoardSnapshot, error) {
	query := url.Values{}
	query.Set("date", date.String())

	var wire boardWire
	if err := r.client.do(ctx, "get_dispatch_board", http.MethodGet, "/api/v1/dispatch-board", query, nil, &wire, nil); err != nil {
		return nil, err
	}

	snapshot := &entity.BoardSnapshot{
		Date:       date,
		Columns:    make([]entity.TechnicianColumn, 0, len(wire.Technicians)),
		Unassigned: r.jobs.decodeJobs(wire.UnassignedJobs),
		FetchedAt:  time.Now(),
	}
	for _, tech := range wire.Technicians {
		snapshot.Columns = append(snapshot.Columns, entity.TechnicianColumn{
			Technician: entity.Technician{ID: tech.ID, Name: tech.Name, Active: tech.Active},
			Jobs:       r.jobs.decodeJobs(tech.Jobs),
		})
	}

	return snapshot, nil
}
