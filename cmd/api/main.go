package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kovaleads/marketplace/internal/config"
	"github.com/kovaleads/marketplace/internal/infra/cache"
	"github.com/kovaleads/marketplace/internal/infra/database"
	"github.com/kovaleads/marketplace/internal/infra/http/handlers"
	"github.com/kovaleads/marketplace/internal/infra/http/middleware"
	"github.com/kovaleads/marketplace/internal/infra/integration/stripepay"
	"github.com/kovaleads/marketplace/internal/infra/mail"
	"github.com/kovaleads/marketplace/internal/infra/queue"
	"github.com/kovaleads/marketplace/internal/infra/worker"
	"github.com/kovaleads/marketplace/internal/usecase"
)

func main() {
	cfg, err := config.NewLoadedConfig()
	if err != nil {
		log.Fatalf("❌ failed to load config: %v", err)
	}

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ failed to connect to Postgres: %v", err)
	}
	defer db.Close()

	redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
	if err != nil {
		log.Fatalf("❌ failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitUser, cfg.RabbitPass, cfg.RabbitHost, cfg.RabbitPort)
	if err != nil {
		log.Fatalf("❌ failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitMQ.Close()

	// Repositories
	leadRepo := database.NewLeadRepository(db)
	cartRepo := database.NewCartRepository(db)
	orderRepo := database.NewOrderRepository(db)
	assigneeRepo := database.NewAssigneeRepository(db)
	pricingRepo := database.NewPricingRepository(db)

	// Gateways and adapters
	stripeClient := stripepay.NewClient(cfg.StripeAPIKey, cfg.StripeWebhookSecret)
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	mailSender := mail.NewEmailSender(
		cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass,
		cfg.MailFrom, cfg.OperatorMail,
	)
	companyAddr := usecase.CompanyAddress{
		Name:    cfg.CompanyName,
		Address: cfg.CompanyAddress,
		Phone:   cfg.CompanyPhone,
		Email:   cfg.CompanyEmail,
	}

	// UseCases
	cartUC := usecase.NewCartUseCase(cartRepo, pricingRepo)
	verifyStockUC := usecase.NewVerifyStockUseCase(leadRepo, cartRepo)
	reserveUC := usecase.NewReserveLeadsUseCase(leadRepo, cartRepo, redisCache, producer)
	checkoutUC := usecase.NewCreateCheckoutUseCase(cartRepo, leadRepo, orderRepo, redisCache, stripeClient, companyAddr)
	finalizeUC := usecase.NewFinalizeCheckoutUseCase(leadRepo, cartRepo, orderRepo, assigneeRepo, redisCache, mailSender)
	sweepUC := usecase.NewSweepReservationsUseCase(leadRepo)
	browseUC := usecase.NewBrowseUseCase(leadRepo)

	// Workers: the queue worker handles the delayed release messages, the
	// ticker worker backstops reservations whose message got lost.
	releaseWorker := queue.NewWorker(rabbitMQ.Ch, sweepUC)
	go releaseWorker.Start(queue.ReleaseQueue)

	expiryWorker := worker.NewReservationExpiryWorker(db)
	go expiryWorker.Start(context.Background())

	// Handlers
	cartHandler := handlers.NewCartHandler(cartUC)
	stockHandler := handlers.NewStockHandler(verifyStockUC)
	checkoutHandler := handlers.NewCheckoutHandler(reserveUC, checkoutUC)
	webhookHandler := handlers.NewWebhookHandler(stripeClient, finalizeUC)
	marketplaceHandler := handlers.NewMarketplaceHandler(browseUC)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn, redisCache)

	// Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-User-Context"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/webhook/stripe", webhookHandler.Handle)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BuyerContext)

		r.Get("/marketplace/states", marketplaceHandler.HandleStates)
		r.Get("/marketplace/states/{state}", marketplaceHandler.HandleBuckets)

		r.Get("/cart", cartHandler.HandleList)
		r.Post("/cart", cartHandler.HandleAdd)
		r.Put("/cart/{lineId}", cartHandler.HandleUpdateQuantity)
		r.Delete("/cart/{lineId}", cartHandler.HandleRemove)

		r.Get("/cart/stock", stockHandler.HandleVerify)
		r.Post("/checkout/reserve", checkoutHandler.HandleReserve)
		r.Post("/checkout", checkoutHandler.HandleCreate)
	})

	addr := ":" + cfg.Port
	log.Printf("🔥 Marketplace API listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}
