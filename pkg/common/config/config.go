package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	RateLimitRPS   int
	RateLimitBurst int

	// Model
	ModelPath    string
	ModelVersion string
	CatalogPath  string

	// Scoring
	LowRiskCutpoint      float64
	ModerateRiskCutpoint float64
	AnnotationThreshold  float64
	ReportTopN           int

	// Session
	SessionTTL time.Duration

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers          []string
	KafkaGroupID          string
	KafkaAssessmentsTopic string

	// OIDC
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1024*1024)),
		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 40),

		ModelPath:    getEnv("MODEL_PATH", "./model"),
		ModelVersion: getEnv("MODEL_VERSION", "afi-thrombocytopenia-v1"),
		CatalogPath:  getEnv("CLINICAL_CATALOG_PATH", ""),

		LowRiskCutpoint:      getFloatEnv("RISK_LOW_CUTPOINT", 0.7),
		ModerateRiskCutpoint: getFloatEnv("RISK_MODERATE_CUTPOINT", 0.4),
		AnnotationThreshold:  getFloatEnv("ANNOTATION_THRESHOLD", 0.05),
		ReportTopN:           getIntEnv("REPORT_TOP_N", 5),

		SessionTTL: getDuration("SESSION_TTL", 30*time.Minute),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "synaptica"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "synaptica123"),
		PostgresDB:       getEnv("POSTGRES_DB", "synaptica"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:          getStringSliceEnv("KAFKA_BROKERS", nil),
		KafkaGroupID:          getEnv("KAFKA_GROUP_ID", "afi-risk-audit"),
		KafkaAssessmentsTopic: getEnv("KAFKA_TOPIC_ASSESSMENTS", "risk.assessments"),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
