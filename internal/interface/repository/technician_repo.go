package repository

import (
	"context"
	"net/http"

	"fieldos-dispatch/internal/domain/entity"
	"fieldos-dispatch/internal/domain/repository"
	"fieldos-dispatch/pkg/logger"
)

// FieldOSTechnicianRepository implements repository.TechnicianRepository
// against the FieldOS REST backend
type FieldOSTechnicianRepository struct {
	client *Client
	logger logger.Logger
}

// NewFieldOSTechnicianRepository creates a new technician repository
func NewFieldOSTechnicianRepository(client *Client, log logger.Logger) repository.TechnicianRepository {
	return &FieldOSTechnicianRepository{
		client: client,
		logger: log,
	}
}

// ListTechnicians fetches the full technician roster, active and inactive.
// Callers filter on Active where pickers require it.
func (r *FieldOSTechnicianRepository) ListTechnicians(ctx context.Context) ([]entity.Technician, error) {
	var techs []entity.Technician
	if err := r.client.do(ctx, "list_technicians", http.MethodGet, "/api/v1/technicians", nil, nil, &techs, nil); err != nil {
		return nil, err
	}
	return techs, nil
}
