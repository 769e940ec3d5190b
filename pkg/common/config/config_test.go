package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RISK_LOW_CUTPOINT", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()
	assert.Equal(t, 0.7, cfg.LowRiskCutpoint)
	assert.Equal(t, 0.4, cfg.ModerateRiskCutpoint)
	assert.Equal(t, 0.05, cfg.AnnotationThreshold)
	assert.Equal(t, 5, cfg.ReportTopN)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RISK_LOW_CUTPOINT", "0.8")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("REPORT_TOP_N", "not-a-number")

	cfg := Load()
	assert.Equal(t, 0.8, cfg.LowRiskCutpoint)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5, cfg.ReportTopN)
}
