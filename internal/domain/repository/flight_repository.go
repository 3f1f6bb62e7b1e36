package repository

import (
	"context"
	"time"

	"farescout-service/internal/domain/entity"
)

// PriceUpdate lowers the price of an already-stored flight record.
type PriceUpdate struct {
	FlightID       uint
	PricePerPerson float64
	TotalPrice     float64
	BookingURL     string
	ScrapedAt      time.Time
}

// FlightRepository defines the interface for flight record operations.
// ApplyBatch must be transactional: either every insert and update in the
// batch lands or none of them do.
type FlightRepository interface {
	FindCandidates(ctx context.Context, originAirportID, destinationAirportID uint, airline string, departureDate time.Time) ([]entity.Flight, error)
	ApplyBatch(ctx context.Context, inserts []*entity.Flight, updates []PriceUpdate) error
}
