package entity

import "time"

// Airport represents a reference airport. Distance, driving time and parking
// cost are measured from the configured home base and start zeroed when the
// airport is created lazily from an unknown IATA code.
type Airport struct {
	ID                uint
	IataCode          string
	Name              string
	City              string
	DistanceFromHome  int
	DrivingTimeMins   int
	ParkingCostPerDay float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
