package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"farescout-service/internal/domain/entity"
	"farescout-service/internal/domain/repository"
	"farescout-service/pkg/logger"
	"farescout-service/pkg/metrics"
	"farescout-service/pkg/utils"
)

// matchWindow is how far apart two departure times may be while still
// describing the same stored flight.
const matchWindow = 2 * time.Hour

// Persister writes deduplicated offers to the relational store: airports
// resolved or lazily created, flight records inserted or price-lowered, one
// run record per invocation. Batches commit independently so a failing batch
// cannot corrupt earlier ones.
type Persister struct {
	airports  repository.AirportRepository
	flights   repository.FlightRepository
	runs      repository.ScrapeRunRepository
	batchSize int
	logger    logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewPersister creates a persister. batchSize bounds how many offers go into
// one transaction.
func NewPersister(
	airports repository.AirportRepository,
	flights repository.FlightRepository,
	runs repository.ScrapeRunRepository,
	batchSize int,
	log logger.Logger,
	m *metrics.Metrics,
) *Persister {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Persister{
		airports:  airports,
		flights:   flights,
		runs:      runs,
		batchSize: batchSize,
		logger:    log,
		metrics:   m,
		now:       time.Now,
	}
}

// Save persists the offers and returns the run summary. Partial failures are
// reflected in the stats, never raised; only failure to open the run record
// returns a non-nil error.
func (p *Persister) Save(ctx context.Context, offers []entity.Offer) (*entity.RunStats, error) {
	startedAt := p.now()
	run := &entity.ScrapeRun{
		JobType:   "flights",
		Source:    "coordinator",
		Status:    entity.RunStatusRunning,
		Attempted: len(offers),
		StartedAt: startedAt,
	}
	if err := p.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to open run record: %w", err)
	}

	stats := &entity.RunStats{
		RunID:     run.ID,
		Attempted: len(offers),
		Status:    entity.RunStatusCompleted,
	}

	airportCache := make(map[string]*entity.Airport)

	for start := 0; start < len(offers); start += p.batchSize {
		end := start + p.batchSize
		if end > len(offers) {
			end = len(offers)
		}
		batch := offers[start:end]

		if err := p.saveBatch(ctx, batch, airportCache, stats); err != nil {
			p.logger.Error("Batch save failed, run aborted",
				"batchStart", start,
				"batchSize", len(batch),
				"error", err)
			stats.Status = entity.RunStatusFailed
			stats.Error = err.Error()
			stats.Failed += len(batch)
			break
		}
	}

	completedAt := p.now()
	stats.DurationSeconds = completedAt.Sub(startedAt).Seconds()

	run.Status = stats.Status
	run.Inserted = stats.Inserted
	run.Updated = stats.Updated
	run.Skipped = stats.Skipped
	run.ErrorMessage = stats.Error
	run.CompletedAt = &completedAt
	if err := p.runs.Finalize(ctx, run); err != nil {
		p.logger.Error("Failed to finalize run record", "runID", run.ID, "error", err)
	}

	if p.metrics != nil {
		p.metrics.FlightsPersisted.WithLabelValues("inserted").Add(float64(stats.Inserted))
		p.metrics.FlightsPersisted.WithLabelValues("updated").Add(float64(stats.Updated))
		p.metrics.FlightsPersisted.WithLabelValues("skipped").Add(float64(stats.Skipped))
	}

	p.logger.Info("Persistence complete",
		"runID", run.ID,
		"attempted", stats.Attempted,
		"inserted", stats.Inserted,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"status", stats.Status,
		"durationSeconds", stats.DurationSeconds)

	return stats, nil
}

// saveBatch decides insert/update/skip for every offer in the batch and
// applies the whole batch in one transaction. Counts accumulate locally and
// fold into the stats only once the transaction commits, so a rolled-back
// batch contributes nothing but its failure count.
func (p *Persister) saveBatch(ctx context.Context, batch []entity.Offer, airportCache map[string]*entity.Airport, stats *entity.RunStats) error {
	var inserts []*entity.Flight
	var updates []repository.PriceUpdate
	var inserted, updated, skipped int

	for _, offer := range batch {
		departureDate, err := utils.ParseDate(offer.DepartureDate)
		if err != nil {
			p.logger.Warn("Skipping offer with invalid departure date",
				"departureDate", offer.DepartureDate,
				"origin", offer.OriginAirport,
				"destination", offer.DestinationAirport)
			skipped++
			continue
		}

		origin, err := p.resolveAirport(ctx, airportCache, offer.OriginAirport, offer.OriginCity)
		if err != nil {
			return fmt.Errorf("failed to resolve origin airport %s: %w", offer.OriginAirport, err)
		}
		destination, err := p.resolveAirport(ctx, airportCache, offer.DestinationAirport, offer.DestinationCity)
		if err != nil {
			return fmt.Errorf("failed to resolve destination airport %s: %w", offer.DestinationAirport, err)
		}

		existing, err := p.findMatch(ctx, origin.ID, destination.ID, offer.Airline, departureDate, offer.DepartureTime)
		if err != nil {
			return fmt.Errorf("failed to look up existing flights: %w", err)
		}

		if existing != nil {
			if offer.PricePerPerson < existing.PricePerPerson {
				p.logger.Info("Lowering stored flight price",
					"flightID", existing.ID,
					"oldPrice", existing.PricePerPerson,
					"newPrice", offer.PricePerPerson)
				updates = append(updates, repository.PriceUpdate{
					FlightID:       existing.ID,
					PricePerPerson: offer.PricePerPerson,
					TotalPrice:     offer.TotalPrice,
					BookingURL:     offer.BookingURL,
					ScrapedAt:      offer.ScrapedAt,
				})
				updated++
			} else {
				skipped++
			}
			continue
		}

		flight := &entity.Flight{
			OriginAirportID:      origin.ID,
			DestinationAirportID: destination.ID,
			Airline:              airlineOrUnknown(offer.Airline),
			DepartureDate:        departureDate,
			DepartureTime:        offer.DepartureTime,
			ReturnTime:           offer.ReturnTime,
			PricePerPerson:       offer.PricePerPerson,
			TotalPrice:           offer.TotalPrice,
			BookingClass:         offer.BookingClass,
			DirectFlight:         offer.DirectFlight,
			Source:               offer.Source,
			BookingURL:           offer.BookingURL,
			ScrapedAt:            offer.ScrapedAt,
		}
		if returnDate, err := utils.ParseDate(offer.ReturnDate); err == nil {
			flight.ReturnDate = &returnDate
		}
		inserts = append(inserts, flight)
		inserted++
	}

	if len(inserts) > 0 || len(updates) > 0 {
		if err := p.flights.ApplyBatch(ctx, inserts, updates); err != nil {
			return err
		}
	}

	stats.Inserted += inserted
	stats.Updated += updated
	stats.Skipped += skipped
	return nil
}

// resolveAirport looks up an airport by code, creating a placeholder with
// zeroed cost metadata on first sight of an unknown code.
func (p *Persister) resolveAirport(ctx context.Context, cache map[string]*entity.Airport, code, city string) (*entity.Airport, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, fmt.Errorf("empty airport code")
	}
	if airport, ok := cache[normalized]; ok {
		return airport, nil
	}

	airport, err := p.airports.GetByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if airport == nil {
		name := normalized + " Airport"
		if strings.TrimSpace(city) != "" && !strings.EqualFold(city, normalized) {
			name = city + " Airport"
		}
		if strings.TrimSpace(city) == "" {
			city = normalized
		}
		airport = &entity.Airport{
			IataCode: normalized,
			Name:     name,
			City:     city,
		}
		p.logger.Info("Creating placeholder airport", "iataCode", normalized, "city", city)
		if err := p.airports.Create(ctx, airport); err != nil {
			return nil, err
		}
	}

	cache[normalized] = airport
	return airport, nil
}

// findMatch returns the stored flight occupying this offer's dedup bucket:
// same route, airline and date, departure within ±2h. An offer without a
// parsable time matches the date's first candidate.
func (p *Persister) findMatch(ctx context.Context, originID, destinationID uint, airline string, departureDate time.Time, departureTime string) (*entity.Flight, error) {
	candidates, err := p.flights.FindCandidates(ctx, originID, destinationID, airlineOrUnknown(airline), departureDate)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	parsed, err := utils.ParseClock(departureTime)
	if err != nil {
		return &candidates[0], nil
	}
	target := time.Date(departureDate.Year(), departureDate.Month(), departureDate.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, departureDate.Location())

	for i := range candidates {
		stored, err := utils.ParseClock(candidates[i].DepartureTime)
		if err != nil {
			// The offer has a concrete time, an untimed record cannot claim it.
			continue
		}
		storedAt := time.Date(departureDate.Year(), departureDate.Month(), departureDate.Day(),
			stored.Hour(), stored.Minute(), 0, 0, departureDate.Location())

		delta := target.Sub(storedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= matchWindow {
			return &candidates[i], nil
		}
	}
	return nil, nil
}
