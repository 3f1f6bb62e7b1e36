package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"farescout-service/pkg/logger"
)

// AmadeusAdapter queries the Amadeus flight-offers API. Amadeus uses OAuth2
// client credentials; the token source refreshes transparently.
type AmadeusAdapter struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

// NewAmadeusAdapter creates an Amadeus API adapter.
func NewAmadeusAdapter(baseURL, tokenURL, clientID, clientSecret string, log logger.Logger) *AmadeusAdapter {
	oauthConfig := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}

	return &AmadeusAdapter{
		baseURL: baseURL,
		client:  oauthConfig.Client(context.Background()),
		logger:  log,
	}
}

// Name returns the source id.
func (a *AmadeusAdapter) Name() string { return "amadeus" }

type amadeusResponse struct {
	Data []struct {
		Itineraries []struct {
			Segments []struct {
				CarrierCode string `json:"carrierCode"`
				Departure   struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					IataCode string `json:"iataCode"`
				} `json:"arrival"`
			} `json:"segments"`
		} `json:"itineraries"`
		Price struct {
			GrandTotal string `json:"grandTotal"`
		} `json:"price"`
		TravelerPricings []struct {
			FareDetailsBySegment []struct {
				Cabin string `json:"cabin"`
			} `json:"fareDetailsBySegment"`
		} `json:"travelerPricings"`
	} `json:"data"`
}

// Search runs one flight-offers query.
func (a *AmadeusAdapter) Search(ctx context.Context, req SearchRequest) ([]RawOffer, error) {
	params := url.Values{}
	params.Set("originLocationCode", req.Origin)
	params.Set("destinationLocationCode", req.Destination)
	params.Set("departureDate", req.DepartureDate.Format("2006-01-02"))
	params.Set("adults", strconv.Itoa(req.Travelers.Adults))
	params.Set("children", strconv.Itoa(req.Travelers.Children))
	params.Set("currencyCode", "EUR")
	if req.ReturnDate != nil {
		params.Set("returnDate", req.ReturnDate.Format("2006-01-02"))
	}

	endpoint := fmt.Sprintf("%s/v2/shopping/flight-offers?%s", a.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("amadeus request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("amadeus returned status %d", resp.StatusCode)
	}

	var body amadeusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode amadeus response: %w", err)
	}

	travelers := req.Travelers.Total()
	offers := make([]RawOffer, 0, len(body.Data))
	for _, item := range body.Data {
		if len(item.Itineraries) == 0 || len(item.Itineraries[0].Segments) == 0 {
			continue
		}
		outbound := item.Itineraries[0]
		first := outbound.Segments[0]

		total, err := strconv.ParseFloat(item.Price.GrandTotal, 64)
		if err != nil {
			continue
		}

		offer := RawOffer{
			Origin:         first.Departure.IataCode,
			Destination:    outbound.Segments[len(outbound.Segments)-1].Arrival.IataCode,
			Airline:        first.CarrierCode,
			TotalPrice:     total,
			PricePerPerson: total / float64(travelers),
			DirectFlight:   len(outbound.Segments) == 1,
			BookingClass:   "Economy",
			BookingURL: fmt.Sprintf("https://www.amadeus.com/flights/%s-%s",
				req.Origin, req.Destination),
		}
		if len(item.TravelerPricings) > 0 && len(item.TravelerPricings[0].FareDetailsBySegment) > 0 {
			offer.BookingClass = item.TravelerPricings[0].FareDetailsBySegment[0].Cabin
		}

		if departure, err := time.Parse("2006-01-02T15:04:05", first.Departure.At); err == nil {
			offer.DepartureDate = departure.Format("2006-01-02")
			offer.DepartureTime = departure.Format("15:04")
		} else {
			offer.DepartureDate = req.DepartureDate.Format("2006-01-02")
		}

		if len(item.Itineraries) > 1 && len(item.Itineraries[1].Segments) > 0 {
			inboundFirst := item.Itineraries[1].Segments[0]
			if departure, err := time.Parse("2006-01-02T15:04:05", inboundFirst.Departure.At); err == nil {
				offer.ReturnDate = departure.Format("2006-01-02")
				offer.ReturnTime = departure.Format("15:04")
			}
		}

		offers = append(offers, offer)
	}

	a.logger.Debug("Amadeus search complete", "route", req.Origin+"-"+req.Destination, "offers", len(offers))
	return offers, nil
}
