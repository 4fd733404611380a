package main

import (
	"fmt"
	"log"
	"net/http"

	"leadflow/internal/api"
	"leadflow/internal/api/handlers"
	"leadflow/internal/api/middleware"
	"leadflow/internal/engine/intake"
	"leadflow/internal/engine/leads"
	"leadflow/internal/pkg/logger"
	"leadflow/internal/platform/config"
	"leadflow/internal/platform/database"
	"leadflow/internal/platform/graph"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Repositories
	leadRepo := leads.NewRepository(db)
	eventRepo := leads.NewEventRepository(db)

	// Collaborators shared by reference; constructed once at startup.
	graphClient := graph.NewClient(cfg.Meta)

	// Services
	intakeSvc := intake.NewService(graphClient, leadRepo)
	leadSvc := leads.NewService(leadRepo, eventRepo)

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(intakeSvc, cfg.Meta)
	leadHandler := handlers.NewLeadHandler(leadRepo, leadSvc, eventRepo)
	healthHandler := handlers.NewHealthHandler(db)

	// Router
	deps := &api.Dependencies{
		WebhookHandler: webhookHandler,
		LeadHandler:    leadHandler,
		HealthHandler:  healthHandler,
		WebhookLimiter: middleware.NewRateLimiter(cfg.RateLimit.WebhookPerMinute),
		FormLimiter:    middleware.NewRateLimiter(cfg.RateLimit.LeadFormPerMinute),
		CORS:           middleware.NewCORS(cfg.CORS),
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
