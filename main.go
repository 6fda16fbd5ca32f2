package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"pawmart/api/internal/api"
	"pawmart/api/internal/cache"
	"pawmart/api/internal/config"
	"pawmart/api/internal/db"
	"pawmart/api/internal/email"
	"pawmart/api/internal/services"
	"pawmart/api/internal/storage"
	"pawmart/api/internal/tasks"
)

const workerConcurrency = 10

var runMode = flag.String("m", "all", "Run mode: 'api', 'worker' (order notifications), 'all' (default)")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	runAPI, runWorker := false, false
	switch cfg.RunMode {
	case "api":
		runAPI = true
	case "worker":
		runWorker = true
	case "all":
		runAPI, runWorker = true, true
	default:
		log.Fatalf("Invalid run mode specified in config: %s.", cfg.RunMode)
	}

	// Initialize Database. Nothing is served until MongoDB answers.
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(indexCtx, mongoDb); err != nil {
		cancelIndex()
		log.Fatalf("Failed to create indexes: %v", err)
	}
	cancelIndex()

	// Initialize Cache (Redis), optional
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer func() {
			if err := cache.DisconnectRedis(redisClient); err != nil {
				log.Printf("Error disconnecting from Redis: %v", err)
			}
		}()
	} else {
		log.Println("REDIS_ADDR not set: order notifications are disabled.")
		if cfg.RunMode == "worker" {
			log.Fatalf("Run mode 'worker' requires REDIS_ADDR.")
		}
		runWorker = false
	}

	// Initialize Task Client (order notifier)
	var notifier services.OrderNotifier = services.NoopNotifier{}
	if redisClient != nil {
		taskClient := tasks.NewClient(redisClient)
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()
		notifier = taskClient
	}

	// Initialize Services
	listingService := services.NewListingService(mongoDb)
	orderService := services.NewOrderService(mongoDb, notifier)
	healthService := services.NewHealthService(mongoDb, redisClient)

	var s3StorageService storage.IS3Storage
	if cfg.S3Enabled() {
		s3StorageService, err = storage.NewS3Storage(context.Background(), cfg)
		if err != nil {
			log.Fatalf("Failed to initialize S3 storage: %v", err)
		}
	} else {
		log.Println("AWS_S3_BUCKET/AWS_REGION not set: listing image uploads are disabled.")
	}

	// rootCtx ends background loops such as the rate limiter cleanup.
	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1)

	// Start Service API (always runs)
	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: api.SetupServiceRouter(redisClient, shutdownChan),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("Service API listening on :%s", cfg.ServiceApiPort)
		if err := serviceSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Service API ListenAndServe error: %v", err)
		}
		log.Println("Service API server stopped.")
	}()

	// --- Mode-specific servers ---
	var mainApiSrv *http.Server
	var workerSrv *asynq.Server

	log.Printf("Starting %s in '%s' mode...", cfg.AppName, cfg.RunMode)

	if runAPI {
		mainApiSrv = &http.Server{
			Addr: ":" + cfg.ApiPort,
			Handler: api.SetupRouter(rootCtx, cfg, api.Services{
				Listings: listingService,
				Orders:   orderService,
				Health:   healthService,
				Storage:  s3StorageService,
			}),
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("Main API listening on :%s", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("Main API ListenAndServe error: %v", err)
			}
			log.Println("Main API server stopped.")
		}()
	}

	if runWorker {
		emailSender := email.NewSenderFromConfig(cfg, redisClient)
		taskProcessor := tasks.NewTaskProcessor(cfg, emailSender, orderService, listingService)
		workerSrv = tasks.SetupServer(redisClient, workerConcurrency)
		if err := workerSrv.Start(tasks.NewServeMux(taskProcessor)); err != nil {
			log.Fatalf("Could not start task server: %v", err)
		}
		log.Println("Order notification worker started.")
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("Received signal: %s. Shutting down gracefully...", sig)
	case <-shutdownChan:
		log.Println("Shutdown requested via Service API. Shutting down gracefully...")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	log.Println("Shutting down Service API server...")
	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		log.Printf("Service API server shutdown error: %v", err)
	}

	if mainApiSrv != nil {
		log.Println("Shutting down Main API server...")
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("Main API server shutdown error: %v", err)
		}
	}

	if workerSrv != nil {
		log.Println("Shutting down task server...")
		workerSrv.Shutdown()
	}

	cancelRoot()

	log.Println("Waiting for servers to stop...")
	wg.Wait()

	log.Println("Server gracefully stopped")
}
