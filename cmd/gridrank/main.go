package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridrank/gridrank/internal/api/rest"
	"github.com/gridrank/gridrank/internal/cache"
	"github.com/gridrank/gridrank/internal/config"
	"github.com/gridrank/gridrank/internal/ingest/cfbd"
	"github.com/gridrank/gridrank/internal/scheduler"
	"github.com/gridrank/gridrank/internal/service"
	"github.com/gridrank/gridrank/internal/store"
)

const (
	serviceName    = "gridrank"
	serviceVersion = "1.0.0"
)

func main() {
	log.Printf("Starting %s v%s - College Football Power Rankings", serviceName, serviceVersion)

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := store.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("✓ Connected to database")

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// Initialize Redis client with retry logic
	var redisCache *cache.RedisCache
	maxRetries := 30
	retryDelay := 2 * time.Second

	log.Println("Connecting to Redis...")
	for i := 0; i < maxRetries; i++ {
		redisCache, err = cache.NewRedisCache(cfg.Redis.URL)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			log.Printf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
			time.Sleep(retryDelay)
		} else {
			log.Fatalf("Failed to connect to Redis after %d attempts: %v", maxRetries, err)
		}
	}
	defer redisCache.Close()

	log.Println("✓ Connected to Redis")

	// Wire the ranking service around the upstream client
	fetcher := cfbd.New(cfg.CFBD.BaseURL, cfg.CFBD.APIKey)
	rankings := service.NewRankingService(fetcher, db, redisCache, service.Config{
		Seed:     cfg.Solver.Seed,
		Workers:  cfg.Solver.Workers,
		CacheTTL: cfg.Solver.CacheTTL,
	})

	// Start the daily refresh scheduler
	sched, err := scheduler.NewScheduler(rankings, &scheduler.Config{
		Season:      cfg.Season.Year,
		RefreshHour: cfg.Season.RefreshHour,
		MaxRetries:  3,
		RetryDelay:  5 * time.Second,
	})
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Initialize REST API server
	restServer := rest.NewServer(cfg.REST.Port, rankings, cfg.Season.Year)
	go func() {
		log.Printf("Starting REST API server on port %s", cfg.REST.Port)
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()

	log.Printf("✓ REST API server listening on :%s", cfg.REST.Port)
	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Printf("  REST API: http://0.0.0.0:%s", cfg.REST.Port)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	if err := sched.Stop(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}

	log.Printf("%s stopped", serviceName)
}
