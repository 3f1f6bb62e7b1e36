package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the relational schema for all GORM models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Airports{}, &Flights{}, &ScrapeRuns{})
}
