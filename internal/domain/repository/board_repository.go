package repository

import (
	"context"

	"fieldos-dispatch/internal/domain/entity"
	"fieldos-dispatch/pkg/utils"
)

// BoardRepository exposes the backend's precomputed dispatch board shape.
// The refresh pipeline groups locally from the flat job list and never merges
// the two shapes; this endpoint is part of the backend contract and available
// to consumers that want the raw server grouping.
type BoardRepository interface {
	GetDispatchBoard(ctx context.Context, date utils.LocalDate) (*entity.BoardSnapshot, error)
}
