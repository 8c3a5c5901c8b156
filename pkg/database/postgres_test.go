package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff_Bounds(t *testing.T) {
	for n := 0; n < connectAttempts; n++ {
		base := connectBaseWait << n
		lo := time.Duration(float64(base) * (1 - jitterFraction))
		hi := time.Duration(float64(base) * (1 + jitterFraction))

		for i := 0; i < 20; i++ {
			d := backoff(n)
			assert.GreaterOrEqual(t, d, lo)
			assert.LessOrEqual(t, d, hi)
		}
	}
}

func TestBackoff_NegativeAttempt(t *testing.T) {
	d := backoff(-1)
	assert.LessOrEqual(t, d, time.Duration(float64(connectBaseWait)*(1+jitterFraction)))
}

func TestDefaultPostgresConfig(t *testing.T) {
	cfg := DefaultPostgresConfig("postgres://u:p@localhost:5432/db")
	assert.Equal(t, "postgres://u:p@localhost:5432/db", cfg.DSN)
	assert.Equal(t, int32(10), cfg.MaxConns)
	assert.Greater(t, cfg.MaxConns, cfg.MinConns)
}

func TestConnectPostgres_BadDSN(t *testing.T) {
	_, err := ConnectPostgres(context.Background(), PostgresConfig{DSN: "://nope"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse postgres config")
}
