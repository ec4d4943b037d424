package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "kebiao", cfg.App.Name)
	assert.Equal(t, 7012, cfg.App.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.DefaultTimeout)
	assert.Equal(t, 1_000_000, cfg.Scheduler.MaxNodes)
	assert.Equal(t, 4, cfg.Scheduler.BatchWorkers)
	assert.False(t, cfg.Scheduler.PinTeacher)
	assert.Equal(t, []string{"*"}, cfg.API.CORS.Origins)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("SCHEDULER_TIMEOUT", "5s")
	t.Setenv("SCHEDULER_MAX_NODES", "5000")
	t.Setenv("SCHEDULER_PIN_TEACHER", "true")
	t.Setenv("API_CORS_ORIGINS", "https://a.test, https://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, 5*time.Second, cfg.Scheduler.DefaultTimeout)
	assert.Equal(t, 5000, cfg.Scheduler.MaxNodes)
	assert.True(t, cfg.Scheduler.PinTeacher)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.API.CORS.Origins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"未知环境", "APP_ENV", "staging"},
		{"端口越界", "APP_PORT", "70000"},
		{"节点上限为0", "SCHEDULER_MAX_NODES", "0"},
		{"并发为0", "SCHEDULER_BATCH_WORKERS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "kebiao", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=kebiao sslmode=disable", cfg.DSN())
}
