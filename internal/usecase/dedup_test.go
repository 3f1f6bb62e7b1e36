package usecase

import (
	"testing"

	"farescout-service/internal/domain/entity"
	"farescout-service/pkg/logger"
)

func makeOffer(source string, departureTime string, pricePerPerson float64) entity.Offer {
	return entity.Offer{
		OriginAirport:      "MUC",
		DestinationAirport: "LIS",
		Airline:            "TAP",
		DepartureDate:      "2026-09-15",
		DepartureTime:      departureTime,
		PricePerPerson:     pricePerPerson,
		TotalPrice:         pricePerPerson * 4,
		Source:             source,
		BookingURL:         "https://" + source + ".example/offer",
	}
}

func TestDeduplicateMergesSameBucket(t *testing.T) {
	d := NewDeduplicator(logger.NewNop(), nil)

	offers := []entity.Offer{
		makeOffer("kiwi", "14:30", 90),
		makeOffer("ryanair", "14:45", 95),
	}

	unique := d.Deduplicate(offers)
	if len(unique) != 1 {
		t.Fatalf("expected 1 unique offer, got %d", len(unique))
	}

	survivor := unique[0]
	if survivor.PricePerPerson != 90 {
		t.Errorf("expected cheapest price 90, got %v", survivor.PricePerPerson)
	}
	if survivor.DuplicateCount != 2 {
		t.Errorf("expected duplicate count 2, got %d", survivor.DuplicateCount)
	}
	if len(survivor.Sources) != 2 {
		t.Errorf("expected 2 merged sources, got %v", survivor.Sources)
	}
	if len(survivor.BookingURLs) != 2 {
		t.Errorf("expected 2 merged booking URLs, got %v", survivor.BookingURLs)
	}
}

func TestDeduplicateKeepsDistantDepartures(t *testing.T) {
	d := NewDeduplicator(logger.NewNop(), nil)

	offers := []entity.Offer{
		makeOffer("kiwi", "08:00", 90),
		makeOffer("ryanair", "18:00", 90),
	}

	unique := d.Deduplicate(offers)
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique offers, got %d", len(unique))
	}
}

func TestDeduplicateDistinctRoutesAndAirlines(t *testing.T) {
	d := NewDeduplicator(logger.NewNop(), nil)

	other := makeOffer("kiwi", "14:30", 90)
	other.DestinationAirport = "BCN"
	differentAirline := makeOffer("kiwi", "14:30", 90)
	differentAirline.Airline = "Ryanair"

	offers := []entity.Offer{
		makeOffer("kiwi", "14:30", 90),
		other,
		differentAirline,
	}

	unique := d.Deduplicate(offers)
	if len(unique) != 3 {
		t.Fatalf("expected 3 unique offers, got %d", len(unique))
	}
}

func TestDeduplicatePriceTieKeepsFirstSeen(t *testing.T) {
	d := NewDeduplicator(logger.NewNop(), nil)

	offers := []entity.Offer{
		makeOffer("kiwi", "14:30", 90),
		makeOffer("ryanair", "14:45", 90),
	}

	unique := d.Deduplicate(offers)
	if len(unique) != 1 {
		t.Fatalf("expected 1 unique offer, got %d", len(unique))
	}
	if unique[0].Source != "kiwi" {
		t.Errorf("expected first-seen offer to win the tie, got source %q", unique[0].Source)
	}
}

func TestDeduplicateDuplicateCountsCoverInput(t *testing.T) {
	d := NewDeduplicator(logger.NewNop(), nil)

	offers := []entity.Offer{
		makeOffer("kiwi", "14:30", 90),
		makeOffer("ryanair", "14:45", 95),
		makeOffer("wizzair", "15:10", 99),
		makeOffer("kiwi", "08:00", 120),
	}

	unique := d.Deduplicate(offers)
	total := 0
	for _, offer := range unique {
		total += offer.DuplicateCount
	}
	if total != len(offers) {
		t.Errorf("duplicate counts sum to %d, want %d", total, len(offers))
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	d := NewDeduplicator(logger.NewNop(), nil)

	offers := []entity.Offer{
		makeOffer("kiwi", "14:30", 90),
		makeOffer("ryanair", "14:45", 95),
		makeOffer("wizzair", "18:00", 80),
	}

	once := d.Deduplicate(offers)
	twice := d.Deduplicate(once)

	if len(once) != len(twice) {
		t.Fatalf("second pass changed size: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].PricePerPerson != twice[i].PricePerPerson {
			t.Errorf("offer %d price changed on second pass: %v vs %v", i, once[i].PricePerPerson, twice[i].PricePerPerson)
		}
		if once[i].DuplicateCount != twice[i].DuplicateCount {
			t.Errorf("offer %d duplicate count changed on second pass: %d vs %d", i, once[i].DuplicateCount, twice[i].DuplicateCount)
		}
		if len(once[i].Sources) != len(twice[i].Sources) {
			t.Errorf("offer %d sources changed on second pass: %v vs %v", i, once[i].Sources, twice[i].Sources)
		}
	}
}

func TestDeduplicateMissingTimesShareNoonBucket(t *testing.T) {
	d := NewDeduplicator(logger.NewNop(), nil)

	offers := []entity.Offer{
		makeOffer("kiwi", "", 90),
		makeOffer("ryanair", "", 85),
	}

	unique := d.Deduplicate(offers)
	if len(unique) != 1 {
		t.Fatalf("expected offers without times to share the noon bucket, got %d offers", len(unique))
	}
	if unique[0].PricePerPerson != 85 {
		t.Errorf("expected cheapest price 85, got %v", unique[0].PricePerPerson)
	}
}

func TestDeduplicateDropsUnparseableDates(t *testing.T) {
	d := NewDeduplicator(logger.NewNop(), nil)

	bad := makeOffer("kiwi", "14:30", 90)
	bad.DepartureDate = "not-a-date"

	unique := d.Deduplicate([]entity.Offer{bad, makeOffer("ryanair", "14:45", 95)})
	if len(unique) != 1 {
		t.Fatalf("expected the malformed offer to be dropped, got %d offers", len(unique))
	}
	if unique[0].Source != "ryanair" {
		t.Errorf("expected surviving offer from ryanair, got %q", unique[0].Source)
	}
}

func TestDeduplicateSeparatesReturnBuckets(t *testing.T) {
	d := NewDeduplicator(logger.NewNop(), nil)

	withReturn := makeOffer("kiwi", "14:30", 90)
	withReturn.ReturnDate = "2026-09-22"
	withReturn.ReturnTime = "10:00"

	oneWay := makeOffer("ryanair", "14:45", 95)

	unique := d.Deduplicate([]entity.Offer{withReturn, oneWay})
	if len(unique) != 2 {
		t.Fatalf("round trip and one way must not merge, got %d offers", len(unique))
	}
}

func TestDeduplicateEmptyInput(t *testing.T) {
	d := NewDeduplicator(logger.NewNop(), nil)
	if unique := d.Deduplicate(nil); len(unique) != 0 {
		t.Fatalf("expected empty result, got %d offers", len(unique))
	}
}
