package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TravelerCounts is the party size a search prices for.
type TravelerCounts struct {
	Adults   int
	Children int
}

// Total returns the number of seats a fare has to cover.
func (t TravelerCounts) Total() int {
	total := t.Adults + t.Children
	if total <= 0 {
		return 1
	}
	return total
}

// SearchRequest is the uniform search every adapter accepts.
type SearchRequest struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
	ReturnDate    *time.Time
	Travelers     TravelerCounts
}

// RawOffer is an adapter's native result mapped to one common shape. Dates
// and times stay strings because the coordinator, not the adapter, decides
// what malformed values mean.
type RawOffer struct {
	Origin         string
	Destination    string
	Airline        string
	DepartureDate  string
	DepartureTime  string
	ReturnDate     string
	ReturnTime     string
	PricePerPerson float64
	TotalPrice     float64
	DirectFlight   bool
	BookingClass   string
	BookingURL     string
}

// Adapter is the per-source search contract. Implementations own their
// transport; the coordinator is agnostic to how an adapter obtains data.
type Adapter interface {
	Name() string
	Search(ctx context.Context, req SearchRequest) ([]RawOffer, error)
}

// NormalizeIATA validates and uppercases a 3-letter airport code.
func NormalizeIATA(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if len(normalized) != 3 {
		return "", fmt.Errorf("invalid IATA code %q: must be 3 characters", code)
	}
	for _, r := range normalized {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("invalid IATA code %q: must be alphabetic", code)
		}
	}
	return normalized, nil
}
