package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/Mcnoble1/Medisphere-sub002/internal/anchor"
	"github.com/Mcnoble1/Medisphere-sub002/internal/claims"
	"github.com/Mcnoble1/Medisphere-sub002/internal/datarequests"
	"github.com/Mcnoble1/Medisphere-sub002/internal/labresults"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/cache"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/config"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/database"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/logger"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/monitoring"
	"github.com/Mcnoble1/Medisphere-sub002/pkg/repository"
)

const serviceVersion = "1.0.0"

func main() {
	// Local .env files are a development convenience; absence is fine
	_ = godotenv.Load()

	log := logger.New("claims-service", os.Getenv("LOG_LEVEL"))
	log.Info("Starting Claims Service")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", "error", err)
	}

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.CreateSchema(context.Background()); err != nil {
		log.Fatal("Failed to create database schema", "error", err)
	}

	// Mirror-entry cache is optional; the aggregator works without it
	var entryCache cache.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(&cfg.Redis, log)
		if err != nil {
			log.Warn("Redis unavailable; audit aggregation will run uncached", "error", err)
		} else {
			defer redisCache.Close()
			entryCache = redisCache
		}
	}

	// Anchor verifier core
	mirrorClient := anchor.NewMirrorClient(&cfg.Hedera, log)
	gatewayClient := anchor.NewGatewayClient(&cfg.IPFS, log)
	submitter := anchor.NewRelaySubmitter(&cfg.Hedera, log)
	writer := anchor.NewWriter(submitter, cfg.Hedera.TopicID, log)
	verifier := anchor.NewVerifier(mirrorClient, gatewayClient, cfg.Hedera.TopicID, log)

	// Repositories
	claimsRepo := repository.NewClaimsRepository(db.DB, log)
	labResultsRepo := repository.NewLabResultsRepository(db.DB, log)
	dataRequestsRepo := repository.NewDataRequestsRepository(db.DB, log)

	// Services
	claimsService := claims.NewService(claimsRepo, writer, verifier, cfg.Hedera.TopicID, log)
	aggregator := claims.NewAuditAggregator(claimsRepo, mirrorClient, entryCache, cfg.Hedera.TopicID, log)
	labResultsService := labresults.NewService(labResultsRepo, writer, verifier, cfg.Hedera.TopicID, log)
	dataRequestsService := datarequests.NewService(dataRequestsRepo, writer, verifier, cfg.Hedera.TopicID, log)

	// HTTP handlers
	claimsHandlers := claims.NewHandlers(claimsService, aggregator, log)
	labResultsHandlers := labresults.NewHandlers(labResultsService, log)
	dataRequestsHandlers := datarequests.NewHandlers(dataRequestsService, log)
	authMiddleware := claims.NewAuthMiddleware(&cfg.JWT)

	// Monitoring
	metrics := monitoring.NewMetricsCollector("claims-service")
	health := monitoring.NewHealthManager("claims-service", serviceVersion)
	health.RegisterChecker("database", monitoring.NewDatabaseChecker(db.DB))
	health.RegisterChecker("mirror-node", monitoring.NewEndpointChecker("mirror-node", cfg.Hedera.MirrorNodeURL+"/api/v1/network/nodes"))

	router := mux.NewRouter()
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware)
	router.Use(metrics.HTTPMiddleware)

	if cfg.Monitoring.Enabled {
		router.Handle(cfg.Monitoring.MetricsPath, metrics.Handler()).Methods("GET")
		router.Handle(cfg.Monitoring.HealthPath, health.Handler()).Methods("GET")
	}

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMiddleware.Handler)
	claimsHandlers.RegisterRoutes(apiRouter)
	labResultsHandlers.RegisterRoutes(apiRouter)
	dataRequestsHandlers.RegisterRoutes(apiRouter)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Claims Service")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Failed to shutdown server gracefully", "error", err)
	}

	log.Info("Claims Service stopped")
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapper, r)

			log.HTTPRequest(r.Method, r.URL.Path, wrapper.statusCode, time.Since(start).Milliseconds(), r.RemoteAddr)
		})
	}
}

// corsMiddleware handles CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
