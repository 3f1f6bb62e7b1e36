package repository

import (
	"context"
	"time"

	"farescout-service/internal/domain/entity"
	"farescout-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOfferArchiveRepository implements OfferArchiveRepository
type MongoOfferArchiveRepository struct {
	collection *mongo.Collection
}

// offerSnapshot is the archived form of one deduplicated offer
type offerSnapshot struct {
	RunID          uint      `bson:"runId"`
	Origin         string    `bson:"origin"`
	Destination    string    `bson:"destination"`
	Airline        string    `bson:"airline"`
	DepartureDate  string    `bson:"departureDate"`
	DepartureTime  string    `bson:"departureTime,omitempty"`
	ReturnDate     string    `bson:"returnDate,omitempty"`
	ReturnTime     string    `bson:"returnTime,omitempty"`
	PricePerPerson float64   `bson:"pricePerPerson"`
	TotalPrice     float64   `bson:"totalPrice"`
	DirectFlight   bool      `bson:"directFlight"`
	BookingClass   string    `bson:"bookingClass,omitempty"`
	Sources        []string  `bson:"sources"`
	BookingURLs    []string  `bson:"bookingUrls"`
	DuplicateCount int       `bson:"duplicateCount"`
	ScrapedAt      time.Time `bson:"scrapedAt"`
	ArchivedAt     time.Time `bson:"archivedAt"`
}

// NewMongoOfferArchiveRepository creates a new offer archive repository
func NewMongoOfferArchiveRepository(db *mongo.Database) repository.OfferArchiveRepository {
	collection := db.Collection("offer_snapshots")

	// Index on runId for per-run lookups, route+date for price history
	ctx := context.Background()
	runIndex := mongo.IndexModel{
		Keys: bson.M{"runId": 1},
	}
	collection.Indexes().CreateOne(ctx, runIndex)

	routeIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "origin", Value: 1},
			{Key: "destination", Value: 1},
			{Key: "departureDate", Value: 1},
		},
		Options: options.Index(),
	}
	collection.Indexes().CreateOne(ctx, routeIndex)

	return &MongoOfferArchiveRepository{
		collection: collection,
	}
}

// ArchiveRun stores one snapshot document per offer for the given run
func (r *MongoOfferArchiveRepository) ArchiveRun(ctx context.Context, runID uint, offers []entity.Offer) error {
	if len(offers) == 0 {
		return nil
	}

	archivedAt := time.Now()
	documents := make([]interface{}, 0, len(offers))
	for _, offer := range offers {
		documents = append(documents, offerSnapshot{
			RunID:          runID,
			Origin:         offer.OriginAirport,
			Destination:    offer.DestinationAirport,
			Airline:        offer.Airline,
			DepartureDate:  offer.DepartureDate,
			DepartureTime:  offer.DepartureTime,
			ReturnDate:     offer.ReturnDate,
			ReturnTime:     offer.ReturnTime,
			PricePerPerson: offer.PricePerPerson,
			TotalPrice:     offer.TotalPrice,
			DirectFlight:   offer.DirectFlight,
			BookingClass:   offer.BookingClass,
			Sources:        offer.Sources,
			BookingURLs:    offer.BookingURLs,
			DuplicateCount: offer.DuplicateCount,
			ScrapedAt:      offer.ScrapedAt,
			ArchivedAt:     archivedAt,
		})
	}

	_, err := r.collection.InsertMany(ctx, documents)
	return err
}
