// Package main provides the clinic kiosk API service entry point.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/internal/api/handlers"
	"github.com/nulbom/go-kiosk/internal/api/middleware"
	"github.com/nulbom/go-kiosk/internal/assistant"
	"github.com/nulbom/go-kiosk/internal/audit"
	"github.com/nulbom/go-kiosk/internal/billing"
	"github.com/nulbom/go-kiosk/internal/certificate"
	"github.com/nulbom/go-kiosk/internal/identity"
	"github.com/nulbom/go-kiosk/internal/observability/metrics"
	"github.com/nulbom/go-kiosk/internal/observability/tracing"
	"github.com/nulbom/go-kiosk/internal/store/csvstore"
	"github.com/nulbom/go-kiosk/internal/store/postgres"
	"github.com/nulbom/go-kiosk/internal/visit"
)

// Config holds application configuration
type Config struct {
	Port            string
	DataDir         string
	DatabaseURL     string
	AuditBrokers    []string
	AssistantAPIKey string
	OTLPEndpoint    string
	APIKeys         map[string]string
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := loadConfig()
	ctx := context.Background()

	// Tracing (no-op when no endpoint configured)
	traceProvider, err := tracing.Init(ctx, "kiosk-api", cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer traceProvider.Shutdown(ctx)

	m := metrics.New()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Record stores: CSV by default, postgres when a DSN is configured.
	var (
		reservations interface {
			visit.ReservationLookup
			identity.Sampler
			certificate.ReservationSource
		}
		feeSource billing.FeeSource
		ready     func(ctx context.Context) error
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("database ping failed", zap.Error(err))
		}
		logger.Info("using postgres record stores")
		reservations = postgres.NewReservations(pool, logger)
		feeSource = postgres.NewFeeTable(pool, logger)
		ready = pool.Ping
	} else {
		logger.Info("using CSV record stores", zap.String("data_dir", cfg.DataDir))
		csvReservations := csvstore.NewReservations(cfg.DataDir, logger)
		reservations = csvReservations
		feeSource = csvstore.NewFeeTable(cfg.DataDir, logger)
		ready = func(context.Context) error {
			if !csvReservations.Available() {
				return fmt.Errorf("reservation table missing in %s", cfg.DataDir)
			}
			return nil
		}
	}
	catalog := csvstore.NewCatalog(cfg.DataDir, logger)

	// Audit trail (optional)
	var publisher billing.AuditPublisher
	if len(cfg.AuditBrokers) > 0 {
		p, err := audit.NewPublisher(ctx, cfg.AuditBrokers, logger)
		if err != nil {
			logger.Fatal("failed to start audit publisher", zap.Error(err))
		}
		defer p.Close(ctx)
		publisher = p
	}

	// Workflow stages
	capture := identity.NewStoreSampler(reservations, rng, logger)
	workflow := visit.NewWorkflow(reservations, capture, rng, logger)
	sessions := visit.NewSessionStore()
	selector := billing.NewSelector(feeSource, rng, logger)
	ledger := billing.NewLedger(publisher, logger)
	assembler := certificate.NewAssembler(reservations, catalog, rng, logger)
	guide := assistant.NewClient(assistant.Config{
		BaseURL: assistant.DefaultConfig().BaseURL,
		Model:   assistant.DefaultConfig().Model,
		APIKey:  cfg.AssistantAPIKey,
	}, logger)

	// Handlers
	receptionHandler := handlers.NewReceptionHandler(workflow, sessions, m, logger)
	paymentHandler := handlers.NewPaymentHandler(selector, ledger, workflow, sessions, m, logger)
	certificateHandler := handlers.NewCertificateHandler(assembler, certificate.TextRenderer{}, sessions, m, logger)
	assistantHandler := handlers.NewAssistantHandler(guide, m, logger)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Tracing("kiosk-api"))

	r.Get("/health", healthHandler)
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := ready(r.Context()); err != nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.KioskAuth(cfg.APIKeys))
		r.Use(middleware.KioskID)
		r.Mount("/reception", receptionHandler.Routes())
		r.Mount("/payment", paymentHandler.Routes())
		r.Mount("/certificate", certificateHandler.Routes())
		r.Mount("/assistant", assistantHandler.Routes())
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	logger.Info("starting kiosk API", zap.String("port", cfg.Port))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("server stopped")
}

func loadConfig() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	var brokers []string
	if env := os.Getenv("AUDIT_BROKERS"); env != "" {
		brokers = strings.Split(env, ",")
	}

	// Shared kiosk keys for demo installs
	apiKeys := map[string]string{
		"demo-kiosk-key-12345": "front-desk-1",
		"test-kiosk-key-67890": "test-kiosk",
	}
	if key := os.Getenv("KIOSK_API_KEY"); key != "" {
		apiKeys[key] = "env-kiosk"
	}

	return Config{
		Port:            port,
		DataDir:         dataDir,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AuditBrokers:    brokers,
		AssistantAPIKey: os.Getenv("GEMINI_API_KEY"),
		OTLPEndpoint:    os.Getenv("OTLP_ENDPOINT"),
		APIKeys:         apiKeys,
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","service":"kiosk-api","version":"1.0.0"}`)
}
