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
	"github.com/synaptica-ai/afi-risk/pkg/assessment"
	"github.com/synaptica-ai/afi-risk/pkg/clinical"
	"github.com/synaptica-ai/afi-risk/pkg/common/config"
	"github.com/synaptica-ai/afi-risk/pkg/common/database"
	"github.com/synaptica-ai/afi-risk/pkg/common/kafka"
	"github.com/synaptica-ai/afi-risk/pkg/common/logger"
	"github.com/synaptica-ai/afi-risk/pkg/features"
	"github.com/synaptica-ai/afi-risk/pkg/gateway/auth"
	"github.com/synaptica-ai/afi-risk/pkg/gateway/middleware"
	"github.com/synaptica-ai/afi-risk/pkg/ml/artifact"
	"github.com/synaptica-ai/afi-risk/pkg/observability/metrics"
	"github.com/synaptica-ai/afi-risk/pkg/risk"
)

func main() {
	logger.Init()
	cfg := config.Load()

	model, err := artifact.Load(cfg.ModelPath)
	if err != nil {
		logger.Log.WithError(err).WithField("path", cfg.ModelPath).Fatal("Failed to load model artifact")
	}
	catalog, err := clinical.Load(cfg.CatalogPath)
	if err != nil {
		logger.Log.WithError(err).WithField("path", cfg.CatalogPath).Fatal("Failed to load clinical catalog")
	}

	bands := risk.Bands{Low: cfg.LowRiskCutpoint, Moderate: cfg.ModerateRiskCutpoint}
	pipeline, err := assessment.NewPipeline(features.DefaultSchema(), catalog, model, bands, cfg.AnnotationThreshold)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to build scoring pipeline")
	}

	var store assessment.Store
	if redisClient, err := database.GetRedis(cfg); err == nil {
		store = assessment.NewRedisStore(redisClient, cfg.SessionTTL)
		defer database.CloseRedis()
	} else {
		logger.Log.WithError(err).Warn("Redis unavailable, keeping sessions in memory")
		store = assessment.NewMemoryStore(cfg.SessionTTL)
	}

	var publisher assessment.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaAssessmentsTopic)
		defer producer.Close()
		publisher = producer
	} else {
		logger.Log.Warn("KAFKA_BROKERS not set, assessment events disabled")
	}

	service := assessment.NewService(pipeline, store, publisher, cfg.ModelVersion, cfg.ReportTopN)

	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS)
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.BodyLimit(cfg.MaxRequestBody))
	if oidcAuth, err := auth.NewOIDCAuthenticator(cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret); err == nil {
		apiRouter.Use(middleware.Authenticate(oidcAuth))
	} else {
		logger.Log.WithError(err).Warn("OIDC authentication not configured, running without auth")
	}
	assessment.NewHTTPHandler(service, cfg.MaxRequestBody).Register(apiRouter)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":          cfg.ServerHost,
			"port":          cfg.ServerPort,
			"model_version": cfg.ModelVersion,
			"features":      len(model.FeatureOrder),
		}).Info("Risk Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Risk Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Risk Service stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
