package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("DB_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDev())
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Equal(t, 15, cfg.JWT.AccessTokenMins)
	assert.Equal(t, 10*1024*1024, cfg.UploadLimit())
	assert.False(t, cfg.ArchiveEnabled())
	assert.Equal(t, "*", cfg.GetAllowedOrigins())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DEV_DB_HOST", "db.internal")
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("UPLOAD_MAX_MB", "2")
	t.Setenv("S3_BUCKET", "claims-uploads")
	t.Setenv("TOKEN_PURGE_SCHEDULE", "@hourly")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.True(t, cfg.DemoMode)
	assert.Equal(t, 2*1024*1024, cfg.UploadLimit())
	assert.True(t, cfg.ArchiveEnabled())
	assert.Equal(t, "@hourly", cfg.Cron.TokenPurgeSchedule)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("APP_MODE", "staging")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("APP_MODE", "dev")
	t.Setenv("DB_DRIVER", "oracle")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("APP_MODE", "prod")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PROD_JWT_SECRET", "")
	_, err = Load()
	assert.ErrorContains(t, err, "PROD_JWT_SECRET")
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{DriverMySQL, DriverPostgres, DriverSQLite} {
		d, err := Dialector(DatabaseConfig{Driver: driver, SQLitePath: "x.db"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector(DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestBuildDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: "1", User: "u", Password: "p", DBName: "n", SQLitePath: "claims.db"}

	assert.Equal(t, "u:p@tcp(h:1)/n?charset=utf8mb4&parseTime=True&loc=UTC", buildMySQLDSN(d))
	assert.Equal(t, "host=h port=1 user=u password=p dbname=n sslmode=disable TimeZone=UTC", buildPostgresDSN(d))
	assert.Contains(t, buildSQLiteDSN(d), "file:claims.db?")
}
