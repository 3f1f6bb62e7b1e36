package repository

import (
	"context"

	"farescout-service/internal/domain/entity"
)

// AirportRepository defines the interface for airport reference data.
// GetByCode returns (nil, nil) on a clean miss so callers can create the
// placeholder themselves.
type AirportRepository interface {
	GetByCode(ctx context.Context, iataCode string) (*entity.Airport, error)
	Create(ctx context.Context, airport *entity.Airport) error
}
