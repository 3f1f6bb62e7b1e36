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

// KiwiAdapter queries the Kiwi Tequila search API. Quota is tight (the
// default budget is monthly), so the coordinator gates every call.
type KiwiAdapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger.Logger
}

// NewKiwiAdapter creates a Kiwi API adapter.
func NewKiwiAdapter(baseURL, apiKey string, log logger.Logger) *KiwiAdapter {
	return &KiwiAdapter{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  log,
	}
}

// Name returns the source id.
func (a *KiwiAdapter) Name() string { return "kiwi" }

type kiwiResponse struct {
	Data []struct {
		FlyFrom  string  `json:"flyFrom"`
		FlyTo    string  `json:"flyTo"`
		Airlines []string `json:"airlines"`
		Price    float64 `json:"price"`
		DeepLink string  `json:"deep_link"`
		Route    []struct {
			LocalDeparture string `json:"local_departure"`
			Return         int    `json:"return"`
		} `json:"route"`
	} `json:"data"`
}

// Search runs one round-trip fare query.
func (a *KiwiAdapter) Search(ctx context.Context, req SearchRequest) ([]RawOffer, error) {
	params := url.Values{}
	params.Set("fly_from", req.Origin)
	params.Set("fly_to", req.Destination)
	params.Set("date_from", req.DepartureDate.Format("02/01/2006"))
	params.Set("date_to", req.DepartureDate.Format("02/01/2006"))
	params.Set("adults", fmt.Sprintf("%d", req.Travelers.Adults))
	params.Set("children", fmt.Sprintf("%d", req.Travelers.Children))
	params.Set("curr", "EUR")
	if req.ReturnDate != nil {
		params.Set("return_from", req.ReturnDate.Format("02/01/2006"))
		params.Set("return_to", req.ReturnDate.Format("02/01/2006"))
	}

	endpoint := fmt.Sprintf("%s/v2/search?%s", a.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("apikey", a.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("kiwi request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kiwi returned status %d", resp.StatusCode)
	}

	var body kiwiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode kiwi response: %w", err)
	}

	offers := make([]RawOffer, 0, len(body.Data))
	for _, item := range body.Data {
		airline := "Unknown"
		if len(item.Airlines) > 0 {
			airline = item.Airlines[0]
		}

		offer := RawOffer{
			Origin:         item.FlyFrom,
			Destination:    item.FlyTo,
			Airline:        airline,
			DepartureDate:  req.DepartureDate.Format("2006-01-02"),
			PricePerPerson: item.Price,
			DirectFlight:   len(item.Route) <= 2,
			BookingClass:   "Economy",
			BookingURL:     item.DeepLink,
		}
		if req.ReturnDate != nil {
			offer.ReturnDate = req.ReturnDate.Format("2006-01-02")
		}

		for _, leg := range item.Route {
			departure, err := time.Parse(time.RFC3339, leg.LocalDeparture)
			if err != nil {
				continue
			}
			if leg.Return == 0 && offer.DepartureTime == "" {
				offer.DepartureTime = departure.Format("15:04")
			}
			if leg.Return == 1 && offer.ReturnTime == "" {
				offer.ReturnTime = departure.Format("15:04")
			}
		}

		offers = append(offers, offer)
	}

	a.logger.Debug("Kiwi search complete", "route", req.Origin+"-"+req.Destination, "offers", len(offers))
	return offers, nil
}
