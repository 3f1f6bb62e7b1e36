package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"farescout-service/internal/interface/scraper"
	"farescout-service/internal/ratelimit"
	"farescout-service/pkg/logger"
)

// fakeAdapter returns canned offers or a canned error.
type fakeAdapter struct {
	name   string
	offers []scraper.RawOffer
	err    error
	block  bool
	calls  int
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) Search(ctx context.Context, req scraper.SearchRequest) ([]scraper.RawOffer, error) {
	a.calls++
	if a.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.offers, nil
}

// noopStore never throttles and never fails.
type noopStore struct{}

func (noopStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return 1, nil
}
func (noopStore) Get(ctx context.Context, key string) (int64, error) { return 0, nil }

// exhaustedStore reports every budget as already spent.
type exhaustedStore struct{}

func (exhaustedStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return 1000, nil
}
func (exhaustedStore) Get(ctx context.Context, key string) (int64, error) { return 1000, nil }

func openLimiter() *ratelimit.Limiter {
	return ratelimit.NewLimiter(noopStore{}, map[string]ratelimit.Limit{}, logger.NewNop())
}

func rawOffer(price float64) scraper.RawOffer {
	return scraper.RawOffer{
		Airline:        "TAP",
		DepartureDate:  "2026-09-15",
		DepartureTime:  "14:30",
		PricePerPerson: price,
		TotalPrice:     price * 4,
	}
}

func testCoordinator(adapters []scraper.Adapter, limiter *ratelimit.Limiter) *Coordinator {
	return NewCoordinator(
		adapters,
		limiter,
		scraper.TravelerCounts{Adults: 2, Children: 2},
		5*time.Second,
		0,
		logger.NewNop(),
		nil,
	)
}

func singleRange() []DateRange {
	departure := time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC)
	ret := departure.AddDate(0, 0, 7)
	return []DateRange{{Departure: departure, Return: &ret}}
}

func TestScrapeAllToleratesFailingSource(t *testing.T) {
	adapters := []scraper.Adapter{
		&fakeAdapter{name: "kiwi", offers: []scraper.RawOffer{rawOffer(90)}},
		&fakeAdapter{name: "ryanair", offers: []scraper.RawOffer{rawOffer(80), rawOffer(85)}},
		&fakeAdapter{name: "wizzair", offers: []scraper.RawOffer{rawOffer(95)}},
		&fakeAdapter{name: "amadeus", err: errors.New("upstream 500")},
	}
	c := testCoordinator(adapters, openLimiter())

	offers := c.ScrapeAll(context.Background(), []string{"MUC"}, []string{"LIS"}, singleRange())
	if len(offers) != 4 {
		t.Fatalf("expected the union of the 3 healthy sources (4 offers), got %d", len(offers))
	}
	for _, offer := range offers {
		if offer.Source == "amadeus" {
			t.Errorf("failing source must contribute no offers, got %+v", offer)
		}
	}
}

func TestScrapeAllAllSourcesFailing(t *testing.T) {
	adapters := []scraper.Adapter{
		&fakeAdapter{name: "kiwi", err: errors.New("down")},
		&fakeAdapter{name: "ryanair", err: errors.New("down")},
	}
	c := testCoordinator(adapters, openLimiter())

	offers := c.ScrapeAll(context.Background(), []string{"MUC"}, []string{"LIS"}, singleRange())
	if len(offers) != 0 {
		t.Fatalf("expected empty result when every source fails, got %d offers", len(offers))
	}
}

func TestScrapeAllCrossProduct(t *testing.T) {
	adapter := &fakeAdapter{name: "kiwi", offers: []scraper.RawOffer{rawOffer(90)}}
	c := testCoordinator([]scraper.Adapter{adapter}, openLimiter())

	c.ScrapeAll(context.Background(), []string{"MUC", "FMM"}, []string{"LIS", "BCN", "PRG"}, singleRange())
	if adapter.calls != 6 {
		t.Fatalf("expected 2x3x1 = 6 tasks, got %d adapter calls", adapter.calls)
	}
}

func TestScrapeAllSkipsInvalidCodes(t *testing.T) {
	adapter := &fakeAdapter{name: "kiwi", offers: []scraper.RawOffer{rawOffer(90)}}
	c := testCoordinator([]scraper.Adapter{adapter}, openLimiter())

	c.ScrapeAll(context.Background(), []string{"MUC", "MUNICH"}, []string{"L1S", "BCN"}, singleRange())
	if adapter.calls != 1 {
		t.Fatalf("expected only the MUC-BCN task to run, got %d adapter calls", adapter.calls)
	}
}

func TestScrapeAllRespectsRateLimit(t *testing.T) {
	adapter := &fakeAdapter{name: "skyscanner", offers: []scraper.RawOffer{rawOffer(90)}}
	limiter := ratelimit.NewLimiter(
		exhaustedStore{},
		map[string]ratelimit.Limit{"skyscanner": {MaxRequests: 10, Window: ratelimit.Hourly}},
		logger.NewNop(),
	)
	c := testCoordinator([]scraper.Adapter{adapter}, limiter)

	offers := c.ScrapeAll(context.Background(), []string{"MUC"}, []string{"LIS"}, singleRange())
	if adapter.calls != 0 {
		t.Fatalf("adapter must not be called with an exhausted budget, got %d calls", adapter.calls)
	}
	if len(offers) != 0 {
		t.Fatalf("expected no offers from a rate-limited source, got %d", len(offers))
	}
}

func TestScrapeAllTaskTimeout(t *testing.T) {
	adapters := []scraper.Adapter{
		&fakeAdapter{name: "kiwi", block: true},
		&fakeAdapter{name: "ryanair", offers: []scraper.RawOffer{rawOffer(80)}},
	}
	c := testCoordinator(adapters, openLimiter())
	c.taskTimeout = 50 * time.Millisecond

	offers := c.ScrapeAll(context.Background(), []string{"MUC"}, []string{"LIS"}, singleRange())
	if len(offers) != 1 {
		t.Fatalf("expected only the fast source's offer, got %d", len(offers))
	}
	if offers[0].Source != "ryanair" {
		t.Errorf("expected surviving offer from ryanair, got %q", offers[0].Source)
	}
}

func TestNormalizeBackfillsPrices(t *testing.T) {
	adapter := &fakeAdapter{name: "kiwi", offers: []scraper.RawOffer{
		{Airline: "TAP", DepartureDate: "2026-09-15", TotalPrice: 400},
		{Airline: "TAP", DepartureDate: "2026-09-15", DepartureTime: "18:00", PricePerPerson: 90},
	}}
	c := testCoordinator([]scraper.Adapter{adapter}, openLimiter())

	offers := c.ScrapeAll(context.Background(), []string{"muc"}, []string{"lis"}, singleRange())
	if len(offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(offers))
	}

	for _, offer := range offers {
		if offer.OriginAirport != "MUC" || offer.DestinationAirport != "LIS" {
			t.Errorf("expected uppercased route MUC-LIS, got %s-%s", offer.OriginAirport, offer.DestinationAirport)
		}
		if offer.Source != "kiwi" {
			t.Errorf("expected stamped source kiwi, got %q", offer.Source)
		}
		if offer.ScrapedAt.IsZero() {
			t.Error("expected a capture timestamp")
		}
	}

	// Four travelers: 400 total backfills 100 per person, 90 per person
	// backfills 360 total.
	for _, offer := range offers {
		switch {
		case offer.TotalPrice == 400 && offer.PricePerPerson != 100:
			t.Errorf("expected per-person 100 from total 400, got %v", offer.PricePerPerson)
		case offer.PricePerPerson == 90 && offer.TotalPrice != 360:
			t.Errorf("expected total 360 from per-person 90, got %v", offer.TotalPrice)
		}
	}
}

func TestScrapeAllOrdersBySource(t *testing.T) {
	adapters := []scraper.Adapter{
		&fakeAdapter{name: "wizzair", offers: []scraper.RawOffer{rawOffer(95)}},
		&fakeAdapter{name: "kiwi", offers: []scraper.RawOffer{rawOffer(90)}},
		&fakeAdapter{name: "ryanair", offers: []scraper.RawOffer{rawOffer(85)}},
	}
	c := testCoordinator(adapters, openLimiter())

	offers := c.ScrapeAll(context.Background(), []string{"MUC"}, []string{"LIS"}, singleRange())
	if len(offers) != 3 {
		t.Fatalf("expected 3 offers, got %d", len(offers))
	}
	for i := 1; i < len(offers); i++ {
		if offers[i-1].Source > offers[i].Source {
			t.Fatalf("offers not sorted by source: %q before %q", offers[i-1].Source, offers[i].Source)
		}
	}
}
