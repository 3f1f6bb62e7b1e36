package usecase

import (
	"context"
	"time"

	"farescout-service/internal/domain/entity"
	"farescout-service/internal/domain/repository"
	"farescout-service/pkg/logger"
	"farescout-service/pkg/metrics"
)

// Pipeline runs one full orchestration pass: fan-out scrape, deduplicate,
// persist, archive. It is the single entry point the server loop drives.
type Pipeline struct {
	coordinator  *Coordinator
	deduplicator *Deduplicator
	persister    *Persister
	archive      repository.OfferArchiveRepository
	logger       logger.Logger
	metrics      *metrics.Metrics
}

// NewPipeline creates a pipeline. archive may be nil when no archive store
// is configured.
func NewPipeline(
	coordinator *Coordinator,
	deduplicator *Deduplicator,
	persister *Persister,
	archive repository.OfferArchiveRepository,
	log logger.Logger,
	m *metrics.Metrics,
) *Pipeline {
	return &Pipeline{
		coordinator:  coordinator,
		deduplicator: deduplicator,
		persister:    persister,
		archive:      archive,
		logger:       log,
		metrics:      m,
	}
}

// Run executes one orchestration run and returns its summary.
func (p *Pipeline) Run(ctx context.Context, origins, destinations []string, dateRanges []DateRange) (*entity.RunStats, error) {
	started := time.Now()

	offers := p.coordinator.ScrapeAll(ctx, origins, destinations, dateRanges)
	unique := p.deduplicator.Deduplicate(offers)

	stats, err := p.persister.Save(ctx, unique)
	if err != nil {
		return nil, err
	}

	if p.archive != nil && len(unique) > 0 {
		if err := p.archive.ArchiveRun(ctx, stats.RunID, unique); err != nil {
			p.logger.Warn("Offer archive failed", "runID", stats.RunID, "error", err)
		}
	}

	if p.metrics != nil {
		p.metrics.RunDuration.Observe(time.Since(started).Seconds())
	}
	p.logger.Info("Run complete",
		"runID", stats.RunID,
		"offers", len(offers),
		"unique", len(unique),
		"inserted", stats.Inserted,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"status", stats.Status)

	return stats, nil
}
