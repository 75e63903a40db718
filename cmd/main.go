// analyzer-service
//
// Fetches vacancy listings from the hh.ru search API, extracts requirement
// keywords from snippet text, aggregates counts / percentages / salary
// statistics, persists raw listings to PostgreSQL, and serves the results
// through a handful of web pages.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"hhpulse/analyzer-service/internal/analyzer"
	"hhpulse/analyzer-service/internal/config"
	"hhpulse/analyzer-service/internal/db"
	"hhpulse/analyzer-service/internal/hh"
	"hhpulse/analyzer-service/internal/scheduler"
	"hhpulse/analyzer-service/internal/store"
	"hhpulse/analyzer-service/internal/web"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	if err := godotenv.Load(); err != nil {
		log.Println("[analyzer-service] No .env file — using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[analyzer-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[analyzer-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[analyzer-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[analyzer-service] PostgreSQL connected ✓")

	vacancyStore := store.New(pool)
	if err := vacancyStore.InitSchema(ctx); err != nil {
		log.Fatalf("[analyzer-service] Schema init: %v", err)
	}

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[analyzer-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[analyzer-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[analyzer-service] Redis connected ✓")

	// ── Core components ──────────────────────────────────────────────────────
	client := hh.NewClient(cfg.HHBaseURL, cfg.HHUserAgent)
	core := analyzer.New(client, vacancyStore, rdb, cfg.ExportDir)

	sched := scheduler.New(core, vacancyStore, cfg.RefreshIntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[analyzer-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	handler := web.NewHandler(core, vacancyStore)

	r := gin.New()
	r.Use(gin.Logger(), gin.CustomRecovery(handler.Recovered))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	r.Use(cors.New(corsConfig))

	handler.Register(r)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[analyzer-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[analyzer-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[analyzer-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[analyzer-service] Shutdown error: %v", err)
	}
	log.Println("[analyzer-service] Stopped.")
}
