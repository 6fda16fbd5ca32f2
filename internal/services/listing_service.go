package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pawmart/api/internal/db"
	"pawmart/api/internal/models"
	"pawmart/api/internal/utils"
)

// DefaultRecentLimit is the size of the recent listings feed and the most ListRecent returns.
const DefaultRecentLimit = 6

// IListingService defines the interface for listing-related operations.
type IListingService interface {
	ListAll(ctx context.Context) ([]models.Listing, error)
	ListRecent(ctx context.Context, limit int) ([]models.Listing, error)
	ListByCategory(ctx context.Context, category string) ([]models.Listing, error)
	ListByOwner(ctx context.Context, email string) ([]models.Listing, error)
	Search(ctx context.Context, query string) ([]models.Listing, error)
	FindListingByID(ctx context.Context, id string) (*models.Listing, error)
	CreateListing(ctx context.Context, fields Fields) (*models.Listing, error)
	UpdateListingUnchecked(ctx context.Context, id string, patch Fields) error
	DeleteListing(ctx context.Context, id string) error
}

// listingService implements IListingService.
type listingService struct {
	db  *mongo.Database
	now func() time.Time
}

// NewListingService creates a new ListingService.
func NewListingService(database *mongo.Database) IListingService {
	return &listingService{
		db:  database,
		now: storeNow,
	}
}

// storeNow returns the current UTC time at the millisecond precision MongoDB keeps.
func storeNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// newestFirst orders by creation time, falling back to _id so ties are stable across queries.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (s *listingService) collection() *mongo.Collection {
	return s.db.Collection(db.ListingsCollection)
}

// find runs filter sorted newest first. A zero limit means no limit.
func (s *listingService) find(ctx context.Context, filter bson.M, limit int64) ([]models.Listing, error) {
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.Listing{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return results, nil
}

// ListAll returns every listing, newest first.
func (s *listingService) ListAll(ctx context.Context) ([]models.Listing, error) {
	return s.find(ctx, bson.M{}, 0)
}

// ListRecent returns at most limit listings, newest first, never more than DefaultRecentLimit.
// The result is always a prefix of ListAll.
func (s *listingService) ListRecent(ctx context.Context, limit int) ([]models.Listing, error) {
	if limit <= 0 || limit > DefaultRecentLimit {
		limit = DefaultRecentLimit
	}
	return s.find(ctx, bson.M{}, int64(limit))
}

// ListByCategory filters on the exact category value. Unknown categories simply match nothing.
func (s *listingService) ListByCategory(ctx context.Context, category string) ([]models.Listing, error) {
	return s.find(ctx, bson.M{"category": category}, 0)
}

// ListByOwner returns the listings posted with the given contact email.
func (s *listingService) ListByOwner(ctx context.Context, email string) ([]models.Listing, error) {
	return s.find(ctx, bson.M{"email": email}, 0)
}

// Search matches query as a case-insensitive substring of the listing name.
// The query is quoted, so regex metacharacters match literally.
func (s *listingService) Search(ctx context.Context, query string) ([]models.Listing, error) {
	filter := bson.M{
		"name": primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"},
	}
	return s.find(ctx, filter, 0)
}

// FindListingByID returns ErrInvalidListingID for malformed ids without touching the store,
// and ErrListingNotFound when nothing matches.
func (s *listingService) FindListingByID(ctx context.Context, id string) (*models.Listing, error) {
	listingID, err := utils.ParseObjectID(id)
	if err != nil {
		return nil, ErrInvalidListingID
	}

	var listing models.Listing
	err = s.collection().FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("error finding listing by ID %s: %w", id, err)
	}
	return &listing, nil
}

// CreateListing validates fields, then inserts the canonical record and returns it with its id.
func (s *listingService) CreateListing(ctx context.Context, fields Fields) (*models.Listing, error) {
	listing, err := buildListing(fields, s.now())
	if err != nil {
		return nil, err
	}

	operation := func() error {
		listing.ID = primitive.NewObjectID()
		_, insertErr := s.collection().InsertOne(ctx, listing)
		return insertErr
	}
	if err := db.Try(ctx, operation); err != nil {
		return nil, fmt.Errorf("failed to insert listing %q: %w", listing.Name, err)
	}
	return listing, nil
}

// UpdateListingUnchecked merges patch onto the stored listing with $set and refreshes updatedAt.
// Patched values are converted to their stored types but the listing rules are NOT applied: a
// patch may store an unknown category or a non-zero pet price. A value that cannot be converted
// (e.g. a non-numeric price) is a *ValidationError.
func (s *listingService) UpdateListingUnchecked(ctx context.Context, id string, patch Fields) error {
	listingID, err := utils.ParseObjectID(id)
	if err != nil {
		return ErrInvalidListingID
	}

	converted, err := buildListingPatch(patch)
	if err != nil {
		return err
	}
	set := bson.M(converted)
	set["updatedAt"] = s.now()

	result, err := s.collection().UpdateOne(ctx, bson.M{"_id": listingID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("db error updating listing %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrListingNotFound
	}
	return nil
}

// DeleteListing removes the listing permanently. Deleting twice yields ErrListingNotFound.
func (s *listingService) DeleteListing(ctx context.Context, id string) error {
	listingID, err := utils.ParseObjectID(id)
	if err != nil {
		return ErrInvalidListingID
	}

	result, err := s.collection().DeleteOne(ctx, bson.M{"_id": listingID})
	if err != nil {
		return fmt.Errorf("db error deleting listing %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrListingNotFound
	}
	return nil
}
