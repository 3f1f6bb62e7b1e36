package repository

import (
	"context"

	"farescout-service/internal/domain/entity"
)

// ScrapeRunRepository defines the interface for run record tracking.
type ScrapeRunRepository interface {
	Create(ctx context.Context, run *entity.ScrapeRun) error
	Finalize(ctx context.Context, run *entity.ScrapeRun) error
}
