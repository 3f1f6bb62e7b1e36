package usecase

import (
	"strings"
	"time"

	"farescout-service/internal/domain/entity"
	"farescout-service/pkg/logger"
	"farescout-service/pkg/metrics"
	"farescout-service/pkg/utils"
)

// bucketHours is the width of the coarse time window. Two offers whose
// departures round into the same 2-hour block are treated as the same
// real-world flight.
const bucketHours = 2

// Deduplicator collapses overlapping offers from different sources into one
// cheapest survivor per equivalence group. Pure in-memory, no I/O.
type Deduplicator struct {
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewDeduplicator creates a deduplicator.
func NewDeduplicator(log logger.Logger, m *metrics.Metrics) *Deduplicator {
	return &Deduplicator{logger: log, metrics: m}
}

// equivalenceKey decides whether two offers represent the same flight:
// route + airline + 2-hour departure bucket + return bucket (or absent).
type equivalenceKey struct {
	origin      string
	destination string
	airline     string
	departure   time.Time
	returnAt    time.Time
	hasReturn   bool
}

// Deduplicate groups offers by equivalence key and keeps the cheapest offer
// of every group, first-seen winning price ties. Booking URLs and source ids
// of the whole group are merged onto the survivor; duplicate counts
// accumulate, so deduplicating an already-deduplicated list is a no-op.
// Offers whose departure date cannot be parsed are dropped with a warning.
func (d *Deduplicator) Deduplicate(offers []entity.Offer) []entity.Offer {
	if len(offers) == 0 {
		return []entity.Offer{}
	}

	type group struct {
		members []entity.Offer
	}

	groups := make(map[equivalenceKey]*group)
	order := make([]equivalenceKey, 0, len(offers))

	dropped := 0
	for _, offer := range offers {
		departureDate, err := utils.ParseDate(offer.DepartureDate)
		if err != nil {
			d.logger.Warn("Dropping offer with unparseable departure date",
				"origin", offer.OriginAirport,
				"destination", offer.DestinationAirport,
				"departureDate", offer.DepartureDate,
				"source", offer.Source)
			dropped++
			continue
		}

		key := equivalenceKey{
			origin:      strings.ToUpper(offer.OriginAirport),
			destination: strings.ToUpper(offer.DestinationAirport),
			airline:     strings.ToUpper(airlineOrUnknown(offer.Airline)),
			departure:   roundToBucket(utils.CombineDateClock(departureDate, offer.DepartureTime)),
		}
		if returnDate, err := utils.ParseDate(offer.ReturnDate); err == nil {
			key.returnAt = roundToBucket(utils.CombineDateClock(returnDate, offer.ReturnTime))
			key.hasReturn = true
		}

		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		g.members = append(g.members, offer)
	}

	unique := make([]entity.Offer, 0, len(order))
	for _, key := range order {
		unique = append(unique, mergeGroup(groups[key].members))
	}

	duplicatesRemoved := len(offers) - dropped - len(unique)
	if d.metrics != nil {
		d.metrics.DuplicatesRemoved.Add(float64(duplicatesRemoved))
	}
	d.logger.Info("Deduplication complete",
		"input", len(offers),
		"unique", len(unique),
		"duplicatesRemoved", duplicatesRemoved,
		"dropped", dropped)

	return unique
}

// mergeGroup picks the cheapest member as survivor and folds the group's
// metadata onto it. Members arrive in input order, so a strict less-than
// keeps the first seen of equal prices.
func mergeGroup(members []entity.Offer) entity.Offer {
	best := members[0]
	for _, candidate := range members[1:] {
		if comparablePrice(candidate) < comparablePrice(best) {
			best = candidate
		}
	}

	var urls, sources []string
	count := 0
	for _, member := range members {
		urls = appendUnique(urls, member.BookingURLs...)
		urls = appendUnique(urls, member.BookingURL)
		sources = appendUnique(sources, member.Sources...)
		sources = appendUnique(sources, member.Source)
		if member.DuplicateCount > 0 {
			count += member.DuplicateCount
		} else {
			count++
		}
	}

	best.BookingURLs = urls
	best.Sources = sources
	best.DuplicateCount = count
	return best
}

// comparablePrice orders offers by per-traveler price, falling back to the
// total when a source only reports totals.
func comparablePrice(offer entity.Offer) float64 {
	if offer.PricePerPerson > 0 {
		return offer.PricePerPerson
	}
	if offer.TotalPrice > 0 {
		return offer.TotalPrice
	}
	return 0
}

// roundToBucket floors a timestamp to its 2-hour block.
func roundToBucket(at time.Time) time.Time {
	hour := (at.Hour() / bucketHours) * bucketHours
	return time.Date(at.Year(), at.Month(), at.Day(), hour, 0, 0, 0, at.Location())
}

func airlineOrUnknown(airline string) string {
	if strings.TrimSpace(airline) == "" {
		return "Unknown"
	}
	return airline
}

func appendUnique(list []string, values ...string) []string {
	for _, value := range values {
		if value == "" {
			continue
		}
		seen := false
		for _, existing := range list {
			if existing == value {
				seen = true
				break
			}
		}
		if !seen {
			list = append(list, value)
		}
	}
	return list
}
