package repository

import (
	"context"

	"farescout-service/internal/domain/entity"
)

// OfferArchiveRepository stores per-run snapshots of the deduplicated offers
// for later price analysis. Archiving is best-effort and never fails a run.
type OfferArchiveRepository interface {
	ArchiveRun(ctx context.Context, runID uint, offers []entity.Offer) error
}
