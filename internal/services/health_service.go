package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"pawmart/api/internal/cache"
	"pawmart/api/internal/db"
)

// Dependency states reported by the health check.
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
	StatusDisabled     = "disabled"
)

// HealthReport is the outcome of one health check.
type HealthReport struct {
	Healthy   bool      `json:"-"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Mongo     string    `json:"mongo"`
	Redis     string    `json:"redis"`
}

// IHealthService pings the process-wide store handles.
type IHealthService interface {
	Check(ctx context.Context) HealthReport
}

type healthService struct {
	db  *mongo.Database
	rdb *redis.Client // nil when Redis is not configured
}

// NewHealthService creates a health service. rdb may be nil.
func NewHealthService(database *mongo.Database, rdb *redis.Client) IHealthService {
	return &healthService{db: database, rdb: rdb}
}

// Check pings MongoDB and, when configured, Redis. Each ping gets its own 2s budget.
func (s *healthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{
		Healthy:   true,
		Status:    "OK",
		Timestamp: time.Now().UTC(),
		Mongo:     StatusConnected,
		Redis:     StatusDisabled,
	}

	mongoCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.Ping(mongoCtx, s.db); err != nil {
		report.Mongo = StatusDisconnected
		report.Healthy = false
	}

	if s.rdb != nil {
		redisCtx, cancelRedis := context.WithTimeout(ctx, 2*time.Second)
		defer cancelRedis()
		if err := cache.Ping(redisCtx, s.rdb); err != nil {
			report.Redis = StatusDisconnected
			report.Healthy = false
		} else {
			report.Redis = StatusConnected
		}
	}

	if !report.Healthy {
		report.Status = "DEGRADED"
	}
	return report
}
