package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"farescout-service/internal/domain/entity"
	"farescout-service/internal/interface/scraper"
	"farescout-service/internal/ratelimit"
	"farescout-service/pkg/logger"
	"farescout-service/pkg/metrics"
)

// DateRange is one (departure, return) search window.
type DateRange struct {
	Departure time.Time
	Return    *time.Time
}

// task statuses reported per source.
const (
	taskSucceeded   = "succeeded"
	taskFailed      = "failed"
	taskRateLimited = "rate_limited"
)

// Coordinator fans identical search requests out across every enabled
// source. Tasks run concurrently, are gated by the rate limiter, and fail
// independently: one slow or broken source never blocks or aborts the rest.
type Coordinator struct {
	adapters    []scraper.Adapter
	limiter     *ratelimit.Limiter
	travelers   scraper.TravelerCounts
	taskTimeout time.Duration
	maxRetries  int
	logger      logger.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewCoordinator creates a scrape coordinator over the enabled adapters.
func NewCoordinator(
	adapters []scraper.Adapter,
	limiter *ratelimit.Limiter,
	travelers scraper.TravelerCounts,
	taskTimeout time.Duration,
	maxRetries int,
	log logger.Logger,
	m *metrics.Metrics,
) *Coordinator {
	return &Coordinator{
		adapters:    adapters,
		limiter:     limiter,
		travelers:   travelers,
		taskTimeout: taskTimeout,
		maxRetries:  maxRetries,
		logger:      log,
		metrics:     m,
		now:         time.Now,
	}
}

// scrapeTask is one (origin, destination, range, source) combination.
type scrapeTask struct {
	adapter scraper.Adapter
	request scraper.SearchRequest
}

// taskResult is the outcome slot of one task; the slice of slots is the only
// thing tasks write, each to its own index.
type taskResult struct {
	offers []entity.Offer
	status string
	err    error
}

// sourceStats tabulates per-source outcomes for observability.
type sourceStats struct {
	Attempted   int
	Succeeded   int
	Failed      int
	RateLimited int
	Offers      int
}

// ScrapeAll builds the cross product of origins, destinations, date ranges
// and enabled sources, runs every task concurrently and returns the union of
// all successful results, stable-sorted by source so downstream tie-breaking
// is deterministic. All sources failing simply yields an empty slice.
func (c *Coordinator) ScrapeAll(ctx context.Context, origins, destinations []string, dateRanges []DateRange) []entity.Offer {
	tasks := c.buildTasks(origins, destinations, dateRanges)
	if len(tasks) == 0 {
		c.logger.Warn("No scrape tasks to run",
			"origins", len(origins), "destinations", len(destinations), "dateRanges", len(dateRanges))
		return []entity.Offer{}
	}

	c.logger.Info("Starting scrape fan-out",
		"tasks", len(tasks),
		"origins", len(origins),
		"destinations", len(destinations),
		"dateRanges", len(dateRanges),
		"sources", len(c.adapters))

	started := c.now()
	results := make([]taskResult, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(slot int, task scrapeTask) {
			defer wg.Done()
			results[slot] = c.runTask(ctx, task)
		}(i, task)
	}
	wg.Wait()

	offers := make([]entity.Offer, 0)
	stats := make(map[string]*sourceStats)
	for i, result := range results {
		source := tasks[i].adapter.Name()
		s, ok := stats[source]
		if !ok {
			s = &sourceStats{}
			stats[source] = s
		}
		s.Attempted++

		switch result.status {
		case taskSucceeded:
			s.Succeeded++
			s.Offers += len(result.offers)
			offers = append(offers, result.offers...)
		case taskRateLimited:
			s.RateLimited++
		default:
			s.Failed++
		}
	}

	// Offers arrive in task-completion-independent task order already, but a
	// stable sort by source pins first-seen order for the dedup tie-break.
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Source < offers[j].Source
	})

	for source, s := range stats {
		c.logger.Info("Source scrape summary",
			"source", source,
			"attempted", s.Attempted,
			"succeeded", s.Succeeded,
			"failed", s.Failed,
			"rateLimited", s.RateLimited,
			"offers", s.Offers)
	}
	c.logger.Info("Scrape fan-out complete",
		"tasks", len(tasks),
		"offers", len(offers),
		"elapsed", c.now().Sub(started).String())

	return offers
}

// buildTasks expands the four-way cross product, skipping combinations with
// invalid airport codes.
func (c *Coordinator) buildTasks(origins, destinations []string, dateRanges []DateRange) []scrapeTask {
	var tasks []scrapeTask
	for _, origin := range origins {
		normalizedOrigin, err := scraper.NormalizeIATA(origin)
		if err != nil {
			c.logger.Warn("Skipping invalid origin", "origin", origin, "error", err)
			continue
		}
		for _, destination := range destinations {
			normalizedDestination, err := scraper.NormalizeIATA(destination)
			if err != nil {
				c.logger.Warn("Skipping invalid destination", "destination", destination, "error", err)
				continue
			}
			for _, dateRange := range dateRanges {
				for _, adapter := range c.adapters {
					tasks = append(tasks, scrapeTask{
						adapter: adapter,
						request: scraper.SearchRequest{
							Origin:        normalizedOrigin,
							Destination:   normalizedDestination,
							DepartureDate: dateRange.Departure,
							ReturnDate:    dateRange.Return,
							Travelers:     c.travelers,
						},
					})
				}
			}
		}
	}
	return tasks
}

// runTask executes one task: budget check, budget record, adapter call with
// bounded retry under a per-task timeout, then normalization. Budget is
// spent on attempt, not on success; a failed call still consumed a request
// upstream.
func (c *Coordinator) runTask(ctx context.Context, task scrapeTask) taskResult {
	source := task.adapter.Name()
	route := task.request.Origin + "-" + task.request.Destination

	if !c.limiter.Allowed(ctx, source) {
		c.logger.Warn("Task skipped, source budget exhausted", "source", source, "route", route)
		c.observeTask(source, taskRateLimited, 0)
		if c.metrics != nil {
			c.metrics.RateLimitDenied.WithLabelValues(source).Inc()
		}
		return taskResult{status: taskRateLimited}
	}
	if _, err := c.limiter.Record(ctx, source); err != nil {
		// Fail open: the store being down must not stall the batch.
		c.logger.Warn("Could not record budget usage", "source", source, "error", err)
	}

	taskCtx, cancel := context.WithTimeout(ctx, c.taskTimeout)
	defer cancel()

	started := c.now()
	var raws []scraper.RawOffer
	operation := func() error {
		found, err := task.adapter.Search(taskCtx, task.request)
		if err != nil {
			if taskCtx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		raws = found
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)),
		taskCtx,
	)
	err := backoff.Retry(operation, policy)
	elapsed := c.now().Sub(started)

	if err != nil {
		c.logger.Error("Scrape task failed",
			"source", source,
			"route", route,
			"elapsed", elapsed.String(),
			"error", err)
		c.observeTask(source, taskFailed, elapsed)
		return taskResult{status: taskFailed, err: err}
	}

	offers := c.normalize(source, task.request, raws)
	c.logger.Info("Scrape task complete",
		"source", source,
		"route", route,
		"offers", len(offers),
		"elapsed", elapsed.String())
	c.observeTask(source, taskSucceeded, elapsed)
	if c.metrics != nil {
		c.metrics.OffersScraped.WithLabelValues(source).Add(float64(len(offers)))
	}
	return taskResult{offers: offers, status: taskSucceeded}
}

func (c *Coordinator) observeTask(source, status string, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ScrapeTasks.WithLabelValues(source, status).Inc()
	if elapsed > 0 {
		c.metrics.ScrapeDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	}
}

// normalize maps an adapter's raw results to canonical offers: codes
// uppercased, missing price sides back-filled from the traveler count,
// source and capture timestamp stamped.
func (c *Coordinator) normalize(source string, req scraper.SearchRequest, raws []scraper.RawOffer) []entity.Offer {
	travelers := float64(c.travelers.Total())
	scrapedAt := c.now()

	offers := make([]entity.Offer, 0, len(raws))
	for _, raw := range raws {
		origin := strings.ToUpper(strings.TrimSpace(raw.Origin))
		if origin == "" {
			origin = req.Origin
		}
		destination := strings.ToUpper(strings.TrimSpace(raw.Destination))
		if destination == "" {
			destination = req.Destination
		}

		perPerson := raw.PricePerPerson
		total := raw.TotalPrice
		if perPerson == 0 && total > 0 {
			perPerson = total / travelers
		}
		if total == 0 && perPerson > 0 {
			total = perPerson * travelers
		}

		departureDate := raw.DepartureDate
		if departureDate == "" {
			departureDate = req.DepartureDate.Format("2006-01-02")
		}

		offers = append(offers, entity.Offer{
			OriginAirport:      origin,
			DestinationAirport: destination,
			OriginCity:         origin,
			DestinationCity:    destination,
			Airline:            airlineOrUnknown(raw.Airline),
			DepartureDate:      departureDate,
			DepartureTime:      raw.DepartureTime,
			ReturnDate:         raw.ReturnDate,
			ReturnTime:         raw.ReturnTime,
			PricePerPerson:     perPerson,
			TotalPrice:         total,
			DirectFlight:       raw.DirectFlight,
			BookingClass:       raw.BookingClass,
			Source:             source,
			BookingURL:         raw.BookingURL,
			ScrapedAt:          scrapedAt,
		})
	}
	return offers
}
