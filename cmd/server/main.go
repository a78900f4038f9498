package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mesaclub/reservas/internal/api"
	"mesaclub/reservas/internal/common"
	"mesaclub/reservas/internal/config"
	"mesaclub/reservas/internal/db"
	"mesaclub/reservas/internal/logging"
	"mesaclub/reservas/internal/routes"
	"mesaclub/reservas/internal/workers"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	// Initialize structured logging
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Reservas starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	dsn := cfg.PostgresDSN()

	// Connect to DB with sqlx (reporting queries)
	if err := db.InitPostgres(dsn); err != nil {
		logging.Error("Failed to connect to Postgres (sqlx)", "error", err.Error())
		log.Fatalf("❌ Failed to connect to Postgres (sqlx): %v", err)
	}
	logging.Info("Connected to Postgres (sqlx)")

	// Connect to DB with GORM (workflow writes)
	if _, err := db.InitPostgresORM(dsn); err != nil {
		logging.Error("Failed to connect to Postgres (GORM)", "error", err.Error())
		log.Fatalf("❌ Failed to connect to Postgres (GORM): %v", err)
	}
	logging.Info("Connected to Postgres (GORM)")

	if cfg.AppEnv != "production" {
		if err := db.AutoMigrate(db.PgDB); err != nil {
			log.Fatalf("❌ Failed to migrate schema: %v", err)
		}
		logging.Info("Schema migrated")
	}

	redisClient := common.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)

	deps, err := api.InitDependencies(cfg, redisClient)
	if err != nil {
		log.Fatalf("❌ Failed to initialize dependencies: %v", err)
	}

	// Outbound mail drains through the Redis stream, off the request path.
	hostname, _ := os.Hostname()
	mailWorker := workers.NewMailWorker(hostname, deps.Services.MailQueue, deps.Services.Mailer)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go func() {
		if err := mailWorker.Start(workerCtx, 2); err != nil {
			logging.Error("Mail worker stopped", "error", err.Error())
		}
	}()

	upSince := time.Now()

	router := routes.RegisterRoutes(cfg, deps, upSince)

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	logging.Info("Server starting",
		"port", cfg.Port,
		"environment", cfg.AppEnv,
	)

	log.Println("Starting server on :" + cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, mux))
}
