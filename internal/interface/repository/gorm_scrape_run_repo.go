package repository

import (
	"context"
	"time"

	"farescout-service/internal/domain/entity"
	"farescout-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormScrapeRunRepository implements the ScrapeRunRepository interface
type GormScrapeRunRepository struct {
	db *gorm.DB
}

// NewGormScrapeRunRepository creates a new GORM scrape run repository
func NewGormScrapeRunRepository(db *gorm.DB) repository.ScrapeRunRepository {
	return &GormScrapeRunRepository{
		db: db,
	}
}

// ScrapeRuns GORM model for database mapping
type ScrapeRuns struct {
	ID           uint      `gorm:"primaryKey"`
	JobType      string    `gorm:"column:job_type;size:50;index"`
	Source       string    `gorm:"column:source;size:50"`
	Status       string    `gorm:"column:status;size:20;index"`
	Attempted    int       `gorm:"column:attempted"`
	Inserted     int       `gorm:"column:inserted"`
	Updated      int       `gorm:"column:updated"`
	Skipped      int       `gorm:"column:skipped"`
	ErrorMessage string    `gorm:"column:error_message;type:text"`
	StartedAt    time.Time `gorm:"column:started_at"`
	CompletedAt  *time.Time `gorm:"column:completed_at"`
}

// TableName overrides the default table name
func (ScrapeRuns) TableName() string {
	return "scrape_runs"
}

// Create opens a new run record and backfills the generated ID
func (r *GormScrapeRunRepository) Create(ctx context.Context, run *entity.ScrapeRun) error {
	model := ScrapeRuns{
		JobType:   run.JobType,
		Source:    run.Source,
		Status:    run.Status,
		Attempted: run.Attempted,
		StartedAt: run.StartedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}

	run.ID = model.ID
	return nil
}

// Finalize writes the run's terminal status and counts
func (r *GormScrapeRunRepository) Finalize(ctx context.Context, run *entity.ScrapeRun) error {
	return r.db.WithContext(ctx).Model(&ScrapeRuns{}).
		Where("id = ?", run.ID).
		Updates(map[string]interface{}{
			"status":        run.Status,
			"attempted":     run.Attempted,
			"inserted":      run.Inserted,
			"updated":       run.Updated,
			"skipped":       run.Skipped,
			"error_message": run.ErrorMessage,
			"completed_at":  run.CompletedAt,
		}).Error
}
