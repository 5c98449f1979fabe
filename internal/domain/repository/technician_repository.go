package repository

import (
	"context"

	"fieldos-dispatch/internal/domain/entity"
)

// TechnicianRepository reads the technician roster from the backend
type TechnicianRepository interface {
	ListTechnicians(ctx context.Context) ([]entity.Technician, error)
}
