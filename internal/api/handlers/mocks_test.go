package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pawmart/api/internal/models"
	"pawmart/api/internal/services"
	"pawmart/api/internal/storage"
)

// --- Mocks ---

// MockListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) listings(args mock.Arguments) ([]models.Listing, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) ListAll(ctx context.Context) ([]models.Listing, error) {
	return m.listings(m.Called(ctx))
}

func (m *MockListingService) ListRecent(ctx context.Context, limit int) ([]models.Listing, error) {
	return m.listings(m.Called(ctx, limit))
}

func (m *MockListingService) ListByCategory(ctx context.Context, category string) ([]models.Listing, error) {
	return m.listings(m.Called(ctx, category))
}

func (m *MockListingService) ListByOwner(ctx context.Context, email string) ([]models.Listing, error) {
	return m.listings(m.Called(ctx, email))
}

func (m *MockListingService) Search(ctx context.Context, query string) ([]models.Listing, error) {
	return m.listings(m.Called(ctx, query))
}

func (m *MockListingService) FindListingByID(ctx context.Context, id string) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) CreateListing(ctx context.Context, fields services.Fields) (*models.Listing, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) UpdateListingUnchecked(ctx context.Context, id string, patch services.Fields) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockListingService) DeleteListing(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOrderService
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderService) ListByBuyer(ctx context.Context, email string) ([]models.Order, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderService) CreateOrder(ctx context.Context, fields services.Fields) (*models.Order, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) FindOrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

// MockHealthService
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) Check(ctx context.Context) services.HealthReport {
	args := m.Called(ctx)
	return args.Get(0).(services.HealthReport)
}

// MockS3Storage
type MockS3Storage struct {
	mock.Mock
}

func (m *MockS3Storage) PresignListingImageUpload(ctx context.Context, filename, contentType string) (*storage.ImageUpload, error) {
	args := m.Called(ctx, filename, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ImageUpload), args.Error(1)
}
