package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/synaptica-ai/afi-risk/pkg/common/config"
)

func TestPostgresDSN(t *testing.T) {
	cfg := &config.Config{
		PostgresHost:     "db.internal",
		PostgresPort:     "5433",
		PostgresUser:     "afi",
		PostgresPassword: "secret",
		PostgresDB:       "risk",
		PostgresSSLMode:  "require",
	}
	assert.Equal(t, "host=db.internal user=afi password=secret dbname=risk port=5433 sslmode=require", PostgresDSN(cfg))
}
