package entity

import "time"

// Offer is one candidate flight returned by a single source. Dates and times
// stay in their wire form (YYYY-MM-DD / HH:MM) until persistence, because the
// sources are noisy and malformed values must survive long enough to be
// dropped with a warning instead of crashing a batch.
type Offer struct {
	OriginAirport      string
	DestinationAirport string
	OriginCity         string
	DestinationCity    string
	Airline            string
	DepartureDate      string
	DepartureTime      string
	ReturnDate         string
	ReturnTime         string
	PricePerPerson     float64
	TotalPrice         float64
	DirectFlight       bool
	BookingClass       string
	Source             string
	BookingURL         string
	ScrapedAt          time.Time

	// Filled by deduplication when offers from several sources collapse
	// into one survivor.
	BookingURLs    []string
	Sources        []string
	DuplicateCount int
}
