package postgres

import (
	"testing"

	"hireboard/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnString(t *testing.T) {
	cfg := config.DatabaseConfig{
		DBHost:     "db.internal",
		DBPort:     "5433",
		DBName:     "hireboard",
		DBUser:     "app",
		DBPassword: "it's a secret",
	}

	got := ConnString(cfg)
	assert.Equal(t, `host=db.internal port=5433 user=app password='it\'s a secret' dbname=hireboard sslmode=disable`, got)

	pcfg, err := pgxpool.ParseConfig(got)
	require.NoError(t, err)
	assert.Equal(t, "it's a secret", pcfg.ConnConfig.Password)
	assert.Equal(t, uint16(5433), pcfg.ConnConfig.Port)
}

func TestApplyPoolConfig(t *testing.T) {
	pcfg, err := pgxpool.ParseConfig("host=localhost dbname=x")
	require.NoError(t, err)
	defaults := pcfg.MaxConns

	applyPoolConfig(pcfg, config.DatabaseConfig{})
	assert.Equal(t, defaults, pcfg.MaxConns)

	applyPoolConfig(pcfg, config.DatabaseConfig{PoolMaxConns: 12, PoolMinConns: 2})
	assert.Equal(t, int32(12), pcfg.MaxConns)
	assert.Equal(t, int32(2), pcfg.MinConns)
}
