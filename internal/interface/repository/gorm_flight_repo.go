package repository

import (
	"context"
	"time"

	"farescout-service/internal/domain/entity"
	"farescout-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormFlightRepository implements the FlightRepository interface
type GormFlightRepository struct {
	db *gorm.DB
}

// NewGormFlightRepository creates a new GORM flight repository
func NewGormFlightRepository(db *gorm.DB) repository.FlightRepository {
	return &GormFlightRepository{
		db: db,
	}
}

// Flights GORM model for database mapping
type Flights struct {
	ID                   uint       `gorm:"primaryKey"`
	OriginAirportID      uint       `gorm:"column:origin_airport_id;index:idx_flights_bucket"`
	DestinationAirportID uint       `gorm:"column:destination_airport_id;index:idx_flights_bucket"`
	Airline              string     `gorm:"column:airline;size:50;index:idx_flights_bucket"`
	DepartureDate        time.Time  `gorm:"column:departure_date;index:idx_flights_bucket"`
	DepartureTime        string     `gorm:"column:departure_time;size:5"`
	ReturnDate           *time.Time `gorm:"column:return_date"`
	ReturnTime           string     `gorm:"column:return_time;size:5"`
	PricePerPerson       float64    `gorm:"column:price_per_person"`
	TotalPrice           float64    `gorm:"column:total_price"`
	BookingClass         string     `gorm:"column:booking_class;size:20"`
	DirectFlight         bool       `gorm:"column:direct_flight"`
	Source               string     `gorm:"column:source;size:50;index"`
	BookingURL           string     `gorm:"column:booking_url;type:text"`
	ScrapedAt            time.Time  `gorm:"column:scraped_at;index"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName overrides the default table name
func (Flights) TableName() string {
	return "flights"
}

// FindCandidates loads every stored flight sharing the offer's route,
// airline and departure date; the caller applies the time window
func (r *GormFlightRepository) FindCandidates(ctx context.Context, originAirportID, destinationAirportID uint, airline string, departureDate time.Time) ([]entity.Flight, error) {
	var models []Flights
	result := r.db.WithContext(ctx).
		Where("origin_airport_id = ? AND destination_airport_id = ? AND airline = ? AND departure_date = ?",
			originAirportID, destinationAirportID, airline, departureDate).
		Order("id").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	flights := make([]entity.Flight, 0, len(models))
	for i := range models {
		flights = append(flights, *toFlightEntity(&models[i]))
	}
	return flights, nil
}

// ApplyBatch applies a batch's inserts and price updates in one transaction;
// a failure rolls the whole batch back
func (r *GormFlightRepository) ApplyBatch(ctx context.Context, inserts []*entity.Flight, updates []repository.PriceUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, flight := range inserts {
			model := Flights{
				OriginAirportID:      flight.OriginAirportID,
				DestinationAirportID: flight.DestinationAirportID,
				Airline:              flight.Airline,
				DepartureDate:        flight.DepartureDate,
				DepartureTime:        flight.DepartureTime,
				ReturnDate:           flight.ReturnDate,
				ReturnTime:           flight.ReturnTime,
				PricePerPerson:       flight.PricePerPerson,
				TotalPrice:           flight.TotalPrice,
				BookingClass:         flight.BookingClass,
				DirectFlight:         flight.DirectFlight,
				Source:               flight.Source,
				BookingURL:           flight.BookingURL,
				ScrapedAt:            flight.ScrapedAt,
			}
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
			flight.ID = model.ID
		}

		for _, update := range updates {
			result := tx.Model(&Flights{}).
				Where("id = ?", update.FlightID).
				Updates(map[string]interface{}{
					"price_per_person": update.PricePerPerson,
					"total_price":      update.TotalPrice,
					"booking_url":      update.BookingURL,
					"scraped_at":       update.ScrapedAt,
				})
			if result.Error != nil {
				return result.Error
			}
		}

		return nil
	})
}

// toFlightEntity converts the GORM model to the domain entity
func toFlightEntity(model *Flights) *entity.Flight {
	return &entity.Flight{
		ID:                   model.ID,
		OriginAirportID:      model.OriginAirportID,
		DestinationAirportID: model.DestinationAirportID,
		Airline:              model.Airline,
		DepartureDate:        model.DepartureDate,
		DepartureTime:        model.DepartureTime,
		ReturnDate:           model.ReturnDate,
		ReturnTime:           model.ReturnTime,
		PricePerPerson:       model.PricePerPerson,
		TotalPrice:           model.TotalPrice,
		BookingClass:         model.BookingClass,
		DirectFlight:         model.DirectFlight,
		Source:               model.Source,
		BookingURL:           model.BookingURL,
		ScrapedAt:            model.ScrapedAt,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
	}
}
