package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"farescout-service/pkg/logger"
)

// SkyscannerAdapter drives a headless browser against the Skyscanner results
// page. There is no public API, so results are pulled out of the rendered
// DOM with an in-page script.
type SkyscannerAdapter struct {
	baseURL string
	logger  logger.Logger
}

// NewSkyscannerAdapter creates a browser-backed Skyscanner adapter.
func NewSkyscannerAdapter(baseURL string, log logger.Logger) *SkyscannerAdapter {
	return &SkyscannerAdapter{baseURL: baseURL, logger: log}
}

// Name returns the source id.
func (a *SkyscannerAdapter) Name() string { return "skyscanner" }

// newBrowserContext creates a fresh chromedp context (one browser, one tab).
func (a *SkyscannerAdapter) newBrowserContext(parent context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		chromedp.WindowSize(1280, 900),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	cancel := func() {
		cancelCtx()
		cancelAlloc()
	}
	return ctx, cancel
}

// extractScript pulls the itinerary cards out of the rendered results page.
const extractScript = `(() => {
	const cards = document.querySelectorAll('[class*="FlightsResults"] [class*="TicketStub"], [data-testid="result-card"]');
	const results = [];
	cards.forEach(card => {
		const text = sel => { const el = card.querySelector(sel); return el ? el.textContent.trim() : ''; };
		const priceText = text('[class*="Price"], [data-testid="price"]').replace(/[^0-9.]/g, '');
		results.push({
			airline: text('[class*="LogoImage"] + span, [data-testid="carrier-name"]') || 'Unknown',
			departure_time: text('[class*="LegInfo"] span, [data-testid="departure-time"]'),
			price: parseFloat(priceText) || 0,
			direct: /direct|nonstop/i.test(card.textContent),
		});
	});
	return JSON.stringify(results);
})()`

type skyscannerCard struct {
	Airline       string  `json:"airline"`
	DepartureTime string  `json:"departure_time"`
	Price         float64 `json:"price"`
	Direct        bool    `json:"direct"`
}

// Search renders the results page and scrapes the visible itineraries.
func (a *SkyscannerAdapter) Search(ctx context.Context, req SearchRequest) ([]RawOffer, error) {
	browserCtx, cancel := a.newBrowserContext(ctx)
	defer cancel()

	searchURL := fmt.Sprintf("%s/transport/flights/%s/%s/%s/",
		a.baseURL, req.Origin, req.Destination, req.DepartureDate.Format("060102"))
	if req.ReturnDate != nil {
		searchURL = fmt.Sprintf("%s/transport/flights/%s/%s/%s/%s/",
			a.baseURL, req.Origin, req.Destination,
			req.DepartureDate.Format("060102"), req.ReturnDate.Format("060102"))
	}

	var rawJSON string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(searchURL),
		chromedp.Sleep(8*time.Second), // give the results grid time to render
		chromedp.Evaluate(extractScript, &rawJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("skyscanner page scrape failed: %w", err)
	}

	var cards []skyscannerCard
	if err := json.Unmarshal([]byte(rawJSON), &cards); err != nil {
		return nil, fmt.Errorf("failed to parse skyscanner results: %w", err)
	}

	offers := make([]RawOffer, 0, len(cards))
	for _, card := range cards {
		if card.Price <= 0 {
			continue
		}
		offer := RawOffer{
			Origin:         req.Origin,
			Destination:    req.Destination,
			Airline:        card.Airline,
			DepartureDate:  req.DepartureDate.Format("2006-01-02"),
			DepartureTime:  card.DepartureTime,
			PricePerPerson: card.Price,
			DirectFlight:   card.Direct,
			BookingClass:   "Economy",
			BookingURL:     searchURL,
		}
		if req.ReturnDate != nil {
			offer.ReturnDate = req.ReturnDate.Format("2006-01-02")
		}
		offers = append(offers, offer)
	}

	a.logger.Debug("Skyscanner scrape complete", "route", req.Origin+"-"+req.Destination, "offers", len(offers))
	return offers, nil
}
