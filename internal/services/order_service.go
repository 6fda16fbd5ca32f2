package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pawmart/api/internal/db"
	"pawmart/api/internal/models"
)

// IOrderService defines the interface for order operations. Orders cannot be updated or deleted.
type IOrderService interface {
	ListAll(ctx context.Context) ([]models.Order, error)
	ListByBuyer(ctx context.Context, email string) ([]models.Order, error)
	CreateOrder(ctx context.Context, fields Fields) (*models.Order, error)
	FindOrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
}

// OrderNotifier is told about every order that was stored.
type OrderNotifier interface {
	NotifyOrderPlaced(ctx context.Context, order *models.Order) error
}

// NoopNotifier drops notifications. Used when no task queue is configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyOrderPlaced(context.Context, *models.Order) error { return nil }

type orderService struct {
	db       *mongo.Database
	notifier OrderNotifier
	now      func() time.Time
}

// NewOrderService creates a new OrderService. A nil notifier disables notifications.
func NewOrderService(database *mongo.Database, notifier OrderNotifier) IOrderService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &orderService{db: database, notifier: notifier, now: storeNow}
}

func (s *orderService) collection() *mongo.Collection {
	return s.db.Collection(db.OrdersCollection)
}

func (s *orderService) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cursor, err := s.collection().Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.Order{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return results, nil
}

// ListAll returns every order, newest first.
func (s *orderService) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.find(ctx, bson.M{})
}

// ListByBuyer returns the orders placed with the given buyer email, newest first.
func (s *orderService) ListByBuyer(ctx context.Context, email string) ([]models.Order, error) {
	return s.find(ctx, bson.M{"email": email})
}

// FindOrderByID loads a single order.
func (s *orderService) FindOrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("error finding order by ID %s: %w", id.Hex(), err)
	}
	return &order, nil
}

// CreateOrder validates fields and stores the order. The referenced listing is not looked up,
// so an order may point at a listing that no longer exists.
func (s *orderService) CreateOrder(ctx context.Context, fields Fields) (*models.Order, error) {
	order, err := buildOrder(fields, s.now())
	if err != nil {
		return nil, err
	}

	operation := func() error {
		order.ID = primitive.NewObjectID()
		_, insertErr := s.collection().InsertOne(ctx, order)
		return insertErr
	}
	if err := db.Try(ctx, operation); err != nil {
		return nil, fmt.Errorf("failed to insert order for product %s: %w", order.ProductID.Hex(), err)
	}

	if err := s.notifier.NotifyOrderPlaced(ctx, order); err != nil {
		log.Printf("WARN: order %s stored but notification failed: %v", order.ID.Hex(), err)
	}
	return order, nil
}
