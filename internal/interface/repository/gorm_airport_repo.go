package repository

import (
	"context"
	"errors"
	"time"

	"farescout-service/internal/domain/entity"
	"farescout-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAirportRepository implements the AirportRepository interface
type GormAirportRepository struct {
	db *gorm.DB
}

// NewGormAirportRepository creates a new GORM airport repository
func NewGormAirportRepository(db *gorm.DB) repository.AirportRepository {
	return &GormAirportRepository{
		db: db,
	}
}

// Airports GORM model for database mapping
type Airports struct {
	ID                uint    `gorm:"primaryKey"`
	IataCode          string  `gorm:"column:iata_code;uniqueIndex;size:3"`
	Name              string  `gorm:"column:name;size:100"`
	City              string  `gorm:"column:city;size:50"`
	DistanceFromHome  int     `gorm:"column:distance_from_home"`
	DrivingTimeMins   int     `gorm:"column:driving_time_mins"`
	ParkingCostPerDay float64 `gorm:"column:parking_cost_per_day"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName overrides the default table name
func (Airports) TableName() string {
	return "airports"
}

// GetByCode finds an airport by IATA code; a clean miss returns (nil, nil)
func (r *GormAirportRepository) GetByCode(ctx context.Context, iataCode string) (*entity.Airport, error) {
	var airport Airports
	result := r.db.WithContext(ctx).Where("iata_code = ?", iataCode).First(&airport)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return toAirportEntity(&airport), nil
}

// Create inserts a new airport and backfills the generated ID
func (r *GormAirportRepository) Create(ctx context.Context, airport *entity.Airport) error {
	model := Airports{
		IataCode:          airport.IataCode,
		Name:              airport.Name,
		City:              airport.City,
		DistanceFromHome:  airport.DistanceFromHome,
		DrivingTimeMins:   airport.DrivingTimeMins,
		ParkingCostPerDay: airport.ParkingCostPerDay,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}

	airport.ID = model.ID
	airport.CreatedAt = model.CreatedAt
	airport.UpdatedAt = model.UpdatedAt
	return nil
}

// toAirportEntity converts the GORM model to the domain entity
func toAirportEntity(model *Airports) *entity.Airport {
	return &entity.Airport{
		ID:                model.ID,
		IataCode:          model.IataCode,
		Name:              model.Name,
		City:              model.City,
		DistanceFromHome:  model.DistanceFromHome,
		DrivingTimeMins:   model.DrivingTimeMins,
		ParkingCostPerDay: model.ParkingCostPerDay,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}
