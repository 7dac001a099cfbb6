package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "twinmap.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 50.0, cfg.Server.RateLimit, 0.001)
	assert.Equal(t, 100, cfg.Server.RateBurst)
	assert.InDelta(t, 0.05, cfg.Match.MaxDistance, 0.001)
	assert.False(t, cfg.Match.SelfMatch)
	assert.InDelta(t, 7, cfg.Color.Frequency, 0.001)
	assert.Equal(t, 30, cfg.Refresh.IntervalSecs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	require.Len(t, cfg.Cities, 2)
	assert.Equal(t, "seattle", cfg.Cities[0].Key)
	assert.Equal(t, "portland", cfg.Cities[1].Key)
	require.Len(t, cfg.Cities[0].Center, 2)
	assert.InDelta(t, 47.6062, cfg.Cities[0].Center[0], 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/twinmap
server:
  port: 9090
match:
  max_distance: 0.1
  self_match: true
cities:
  - key: tokyo
    name: Tokyo
    center: [35.6762, 139.6503]
  - key: kyoto
    name: Kyoto
    center: [35.0116, 135.7681]
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/twinmap", cfg.Store.DatabaseURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 0.1, cfg.Match.MaxDistance, 0.001)
	assert.True(t, cfg.Match.SelfMatch)
	require.Len(t, cfg.Cities, 2)
	assert.Equal(t, "tokyo", cfg.Cities[0].Key)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestColorConfig_Palette(t *testing.T) {
	c := ColorConfig{Frequency: 11, SatMin: 60, SatMax: 90, LightMin: 40, LightMax: 60}
	p := c.Palette()

	assert.InDelta(t, 11, p.Frequency, 0.001)
	assert.InDelta(t, 60, p.SatMin, 0.001)
	assert.InDelta(t, 90, p.SatMax, 0.001)
	assert.InDelta(t, 40, p.LightMin, 0.001)
	assert.InDelta(t, 60, p.LightMax, 0.001)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}

func TestRefreshInterval(t *testing.T) {
	c := RefreshConfig{IntervalSecs: 45}
	assert.Equal(t, "45s", c.Interval().String())
}
