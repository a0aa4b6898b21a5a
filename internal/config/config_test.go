package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "fieldrep.db", cfg.Store.SQLitePath)
	assert.Equal(t, "https://router.project-osrm.org", cfg.Routing.OSRMBaseURL)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Routing.NominatimBaseURL)
	assert.Equal(t, "fieldrep-cli/1.0", cfg.Routing.UserAgent)
	assert.Equal(t, 30, cfg.Routing.TimeoutSecs)
	assert.InDelta(t, 1.0, cfg.Routing.GeocodeRPS, 0.001)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 7, cfg.Alerts.FollowUpWindowDays)
	assert.Equal(t, 30, cfg.Alerts.StaleHotDays)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/fieldrep
log:
  level: debug
  format: console
server:
  port: 9090
routing:
  osrm_base_url: http://osrm.internal:5000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/fieldrep", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://osrm.internal:5000", cfg.Routing.OSRMBaseURL)
	// Defaults still apply for unset values
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Routing.NominatimBaseURL)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("FIELDREP_STORE_DRIVER", "postgres")
	t.Setenv("FIELDREP_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chTempDir(t)

	t.Setenv("FIELDREP_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func validDefaults() *Config {
	return &Config{
		Store: StoreConfig{Driver: "sqlite", SQLitePath: "fieldrep.db"},
		Routing: RoutingConfig{
			OSRMBaseURL:      "https://router.project-osrm.org",
			NominatimBaseURL: "https://nominatim.openstreetmap.org",
			TimeoutSecs:      30,
			GeocodeRPS:       1.0,
		},
		Server: ServerConfig{Port: 8080},
	}
}

func TestValidateStore(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("store"))

	cfg.Store.SQLitePath = ""
	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.sqlite_path")

	cfg.Store.Driver = "postgres"
	err = cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url")

	cfg.Store.DatabaseURL = "postgres://localhost/fieldrep"
	assert.NoError(t, cfg.Validate("store"))

	cfg.Store.Driver = "mysql"
	err = cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite or postgres")
}

func TestValidatePlan(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("plan"))

	cfg.Routing.OSRMBaseURL = ""
	cfg.Routing.GeocodeRPS = 0
	err := cfg.Validate("plan")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "routing.osrm_base_url")
	assert.Contains(t, err.Error(), "routing.geocode_rps")
}

func TestValidateServe(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.Port = 0
	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
