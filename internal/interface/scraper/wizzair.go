package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"farescout-service/pkg/logger"
)

// WizzairAdapter queries the WizzAir booking search endpoint.
type WizzairAdapter struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

// NewWizzairAdapter creates a WizzAir search adapter.
func NewWizzairAdapter(baseURL string, log logger.Logger) *WizzairAdapter {
	return &WizzairAdapter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  log,
	}
}

// Name returns the source id.
func (a *WizzairAdapter) Name() string { return "wizzair" }

type wizzairFlightList struct {
	DepartureStation string `json:"departureStation"`
	ArrivalStation   string `json:"arrivalStation"`
	From             string `json:"from"`
	To               string `json:"to"`
}

type wizzairSearchRequest struct {
	FlightList []wizzairFlightList `json:"flightList"`
	AdultCount int                 `json:"adultCount"`
	ChildCount int                 `json:"childCount"`
	Wdc        bool                `json:"wdc"`
}

type wizzairResponse struct {
	OutboundFlights []wizzairFlight `json:"outboundFlights"`
	ReturnFlights   []wizzairFlight `json:"returnFlights"`
}

type wizzairFlight struct {
	DepartureStation  string `json:"departureStation"`
	ArrivalStation    string `json:"arrivalStation"`
	DepartureDateTime string `json:"departureDateTime"`
	Fares             []struct {
		BasePrice struct {
			Amount float64 `json:"amount"`
		} `json:"basePrice"`
		Bundle string `json:"bundle"`
	} `json:"fares"`
}

// Search runs one timetable/fare query.
func (a *WizzairAdapter) Search(ctx context.Context, req SearchRequest) ([]RawOffer, error) {
	searchBody := wizzairSearchRequest{
		FlightList: []wizzairFlightList{{
			DepartureStation: req.Origin,
			ArrivalStation:   req.Destination,
			From:             req.DepartureDate.Format("2006-01-02"),
			To:               req.DepartureDate.Format("2006-01-02"),
		}},
		AdultCount: req.Travelers.Adults,
		ChildCount: req.Travelers.Children,
	}
	if req.ReturnDate != nil {
		searchBody.FlightList = append(searchBody.FlightList, wizzairFlightList{
			DepartureStation: req.Destination,
			ArrivalStation:   req.Origin,
			From:             req.ReturnDate.Format("2006-01-02"),
			To:               req.ReturnDate.Format("2006-01-02"),
		})
	}

	payload, err := json.Marshal(searchBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/Api/search/search", a.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("wizzair request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wizzair returned status %d", resp.StatusCode)
	}

	var body wizzairResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode wizzair response: %w", err)
	}

	// Pair every outbound with the cheapest return; WizzAir prices legs
	// independently.
	returnDate, returnTime, returnPrice := "", "", 0.0
	if len(body.ReturnFlights) > 0 {
		cheapest := body.ReturnFlights[0]
		for _, flight := range body.ReturnFlights[1:] {
			if legPrice(flight) < legPrice(cheapest) {
				cheapest = flight
			}
		}
		if departure, err := time.Parse("2006-01-02T15:04:05", cheapest.DepartureDateTime); err == nil {
			returnDate = departure.Format("2006-01-02")
			returnTime = departure.Format("15:04")
		}
		returnPrice = legPrice(cheapest)
	}

	offers := make([]RawOffer, 0, len(body.OutboundFlights))
	for _, flight := range body.OutboundFlights {
		offer := RawOffer{
			Origin:         flight.DepartureStation,
			Destination:    flight.ArrivalStation,
			Airline:        "WizzAir",
			ReturnDate:     returnDate,
			ReturnTime:     returnTime,
			PricePerPerson: legPrice(flight) + returnPrice,
			DirectFlight:   true,
			BookingClass:   "Economy",
			BookingURL: fmt.Sprintf("https://wizzair.com/en-gb/flights/%s/%s",
				flight.DepartureStation, flight.ArrivalStation),
		}
		if departure, err := time.Parse("2006-01-02T15:04:05", flight.DepartureDateTime); err == nil {
			offer.DepartureDate = departure.Format("2006-01-02")
			offer.DepartureTime = departure.Format("15:04")
		} else {
			offer.DepartureDate = req.DepartureDate.Format("2006-01-02")
		}
		offers = append(offers, offer)
	}

	a.logger.Debug("WizzAir search complete", "route", req.Origin+"-"+req.Destination, "offers", len(offers))
	return offers, nil
}

func legPrice(flight wizzairFlight) float64 {
	if len(flight.Fares) == 0 {
		return 0
	}
	price := flight.Fares[0].BasePrice.Amount
	for _, fare := range flight.Fares[1:] {
		if fare.BasePrice.Amount < price {
			price = fare.BasePrice.Amount
		}
	}
	return price
}
