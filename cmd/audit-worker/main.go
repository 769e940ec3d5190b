package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/synaptica-ai/afi-risk/pkg/audit"
	"github.com/synaptica-ai/afi-risk/pkg/common/config"
	"github.com/synaptica-ai/afi-risk/pkg/common/database"
	"github.com/synaptica-ai/afi-risk/pkg/common/kafka"
	"github.com/synaptica-ai/afi-risk/pkg/common/logger"
	"gorm.io/gorm"
)

func main() {
	logger.Init()
	cfg := config.Load()

	if len(cfg.KafkaBrokers) == 0 {
		logger.Log.Fatal("KAFKA_BROKERS must be set for the audit worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *gorm.DB
	err := database.Retry(ctx, 10, 500*time.Millisecond, 10*time.Second, func() error {
		var err error
		db, err = database.GetPostgres(cfg)
		return err
	})
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.ClosePostgres()

	repo := audit.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate audit tables")
	}

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaAssessmentsTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	logger.Log.WithFields(map[string]interface{}{
		"topic":    cfg.KafkaAssessmentsTopic,
		"group_id": cfg.KafkaGroupID,
	}).Info("Audit Worker started")

	if err := consumer.Consume(ctx, audit.Handler(repo)); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.WithError(err).Error("Audit Worker stopped unexpectedly")
		return
	}

	logger.Log.Info("Audit Worker stopped")
}
