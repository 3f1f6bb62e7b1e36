package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"farescout-service/pkg/logger"
)

// RyanairAdapter queries Ryanair's public fare-finder API. No credentials,
// but the endpoint bans aggressive callers, hence the small daily budget.
type RyanairAdapter struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

// NewRyanairAdapter creates a Ryanair fare-finder adapter.
func NewRyanairAdapter(baseURL string, log logger.Logger) *RyanairAdapter {
	return &RyanairAdapter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  log,
	}
}

// Name returns the source id.
func (a *RyanairAdapter) Name() string { return "ryanair" }

type ryanairFare struct {
	Outbound struct {
		DepartureDate string `json:"departureDate"`
		Price         struct {
			Value float64 `json:"value"`
		} `json:"price"`
	} `json:"outbound"`
	Inbound *struct {
		DepartureDate string `json:"departureDate"`
	} `json:"inbound"`
	Summary struct {
		Price struct {
			Value float64 `json:"value"`
		} `json:"price"`
	} `json:"summary"`
}

type ryanairResponse struct {
	Fares []ryanairFare `json:"fares"`
}

// Search runs one fare-finder query.
func (a *RyanairAdapter) Search(ctx context.Context, req SearchRequest) ([]RawOffer, error) {
	params := url.Values{}
	params.Set("departureAirportIataCode", req.Origin)
	params.Set("arrivalAirportIataCode", req.Destination)
	params.Set("outboundDepartureDateFrom", req.DepartureDate.Format("2006-01-02"))
	params.Set("outboundDepartureDateTo", req.DepartureDate.Format("2006-01-02"))
	params.Set("currency", "EUR")

	path := "/api/farfnd/v4/oneWayFares"
	if req.ReturnDate != nil {
		path = "/api/farfnd/v4/roundTripFares"
		params.Set("inboundDepartureDateFrom", req.ReturnDate.Format("2006-01-02"))
		params.Set("inboundDepartureDateTo", req.ReturnDate.Format("2006-01-02"))
	}

	endpoint := fmt.Sprintf("%s%s?%s", a.baseURL, path, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ryanair request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ryanair returned status %d", resp.StatusCode)
	}

	var body ryanairResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode ryanair response: %w", err)
	}

	offers := make([]RawOffer, 0, len(body.Fares))
	for _, fare := range body.Fares {
		offer := RawOffer{
			Origin:       req.Origin,
			Destination:  req.Destination,
			Airline:      "Ryanair",
			DirectFlight: true,
			BookingClass: "Economy",
			BookingURL: fmt.Sprintf("https://www.ryanair.com/flights/%s/%s/%s",
				req.Origin, req.Destination, req.DepartureDate.Format("2006-01-02")),
		}

		if departure, err := time.Parse("2006-01-02T15:04:05", fare.Outbound.DepartureDate); err == nil {
			offer.DepartureDate = departure.Format("2006-01-02")
			offer.DepartureTime = departure.Format("15:04")
		} else {
			offer.DepartureDate = req.DepartureDate.Format("2006-01-02")
		}

		if fare.Inbound != nil {
			if inbound, err := time.Parse("2006-01-02T15:04:05", fare.Inbound.DepartureDate); err == nil {
				offer.ReturnDate = inbound.Format("2006-01-02")
				offer.ReturnTime = inbound.Format("15:04")
			}
		}

		// Summary carries the round-trip total; one-way fares price per leg.
		if fare.Summary.Price.Value > 0 {
			offer.PricePerPerson = fare.Summary.Price.Value
		} else {
			offer.PricePerPerson = fare.Outbound.Price.Value
		}

		offers = append(offers, offer)
	}

	a.logger.Debug("Ryanair search complete", "route", req.Origin+"-"+req.Destination, "offers", len(offers))
	return offers, nil
}
