package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"pawmart/api/internal/api/handlers"
	"pawmart/api/internal/api/middleware"
	"pawmart/api/internal/config"
	"pawmart/api/internal/email"
	"pawmart/api/internal/services"
	"pawmart/api/internal/storage"
)

// Services bundles what the main API router serves. Storage may be nil when uploads are disabled.
type Services struct {
	Listings services.IListingService
	Orders   services.IOrderService
	Health   services.IHealthService
	Storage  storage.IS3Storage
}

// SetupRouter configures and returns the main Gin engine. ctx bounds the rate limiter's
// background cleanup.
func SetupRouter(ctx context.Context, cfg *config.Config, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	rateLimiter := middleware.NewRateLimiterMiddleware(ctx, cfg.RateLimitBucketSize, cfg.RateLimitRefillRate)

	// Apply global middleware first (order matters)
	r.Use(middleware.CORSMiddleware(cfg.CorsAllowedOrigin))
	r.Use(rateLimiter.Limit())

	metaHandler := handlers.NewRestMetaHandler(svc.Health, cfg.MongoDbName)
	listingHandler := handlers.NewRestListingHandler(svc.Listings, cfg.RecentListingsLimit)
	orderHandler := handlers.NewRestOrderHandler(svc.Orders)
	uploadHandler := handlers.NewRestUploadHandler(svc.Storage)

	r.GET("/", metaHandler.Root)
	r.GET("/health", metaHandler.Health)

	listings := r.Group("/listings")
	{
		listings.GET("", listingHandler.ListListings)
		listings.GET("/recent", listingHandler.ListRecentListings)
		listings.GET("/category/:category", listingHandler.ListListingsByCategory)
		listings.GET("/user/:email", listingHandler.ListUserListings)
		listings.GET("/search/:query", listingHandler.SearchListings)
		listings.GET("/:id", listingHandler.GetListingByID)
		listings.POST("", listingHandler.CreateListing)
		listings.PUT("/:id", listingHandler.UpdateListing)
		listings.DELETE("/:id", listingHandler.DeleteListing)
	}

	orders := r.Group("/orders")
	{
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/user/:email", orderHandler.ListUserOrders)
		orders.POST("", orderHandler.CreateOrder)
	}

	r.POST("/uploads/listing-image", uploadHandler.CreateListingImageUpload)

	return r
}

// SetupServiceRouter configures and returns the service Gin engine.
// rdb may be nil, in which case getTestEmail reports Redis as unavailable.
func SetupServiceRouter(rdb *redis.Client, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			log.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
				log.Println("Shutdown signal sent successfully.")
			default:
				log.Println("Shutdown channel already signaled or blocked.")
			}
		case "getTestEmail":
			getTestEmail(c, rdb, req.Arguments)
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}

// getTestEmail polls Redis briefly for a mock email captured by email.RedisSender.
// Arguments are ["kind", "email"].
func getTestEmail(c *gin.Context, rdb *redis.Client, rawArgs json.RawMessage) {
	if rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Redis is not configured"})
		return
	}

	var args []string
	if err := json.Unmarshal(rawArgs, &args); err != nil || len(args) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [kind, email]"})
		return
	}
	redisKey := email.MockEmailKey(args[1], email.Kind(args[0]))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var emailJSON string
	found := false
	for i := 0; i < 10; i++ {
		var getErr error
		emailJSON, getErr = rdb.Get(ctx, redisKey).Result()
		if getErr == nil {
			found = true
			rdb.Del(ctx, redisKey)
			break
		}
		if !errors.Is(getErr, redis.Nil) {
			log.Printf("Service API: Error getting key %s from Redis: %v", redisKey, getErr)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
			return
		}
		time.Sleep(200 * time.Millisecond)
	}

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", redisKey)})
		return
	}

	var emailData map[string]interface{}
	if err := json.Unmarshal([]byte(emailJSON), &emailData); err != nil {
		log.Printf("Service API: Error unmarshalling email data from key %s: %v", redisKey, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored email data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": emailData})
}
