package entity

import "time"

// Flight is a persisted flight deal. DepartureTime/ReturnTime keep the HH:MM
// wire form; an empty string means the source did not report a time.
type Flight struct {
	ID                   uint
	OriginAirportID      uint
	DestinationAirportID uint
	Airline              string
	DepartureDate        time.Time
	DepartureTime        string
	ReturnDate           *time.Time
	ReturnTime           string
	PricePerPerson       float64
	TotalPrice           float64
	BookingClass         string
	DirectFlight         bool
	Source               string
	BookingURL           string
	ScrapedAt            time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
