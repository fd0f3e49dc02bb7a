package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-brandmanual/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "brandmanual.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: sqlite
  path: manual.db
log:
  level: debug
server:
  port: 9000
autosave_delay: 2s
`), 0o644))

	t.Setenv("BRANDMANUAL_SERVER__PORT", "9100")
	t.Setenv("BRANDMANUAL_OUTPUT_DIR", "exports")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "manual.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "exports", cfg.OutputDir)
	assert.Equal(t, 2*time.Second, cfg.AutoSaveDelay)
	assert.Equal(t, ":9100", cfg.Addr())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BRANDMANUAL_STORAGE__DRIVER=memory\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("BRANDMANUAL_STORAGE__DRIVER") })

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, cfg.Storage.Driver)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*config.Config){
		"driver":     func(c *config.Config) { c.Storage.Driver = "mongo" },
		"path":       func(c *config.Config) { c.Storage.Path = "" },
		"redis addr": func(c *config.Config) { c.Storage.Driver = "redis"; c.Storage.Redis.Addr = "" },
		"output":     func(c *config.Config) { c.OutputDir = " " },
		"level":      func(c *config.Config) { c.Log.Level = "loud" },
		"format":     func(c *config.Config) { c.Log.Format = "xml" },
		"port":       func(c *config.Config) { c.Server.Port = 70000 },
		"duration":   func(c *config.Config) { c.AutoSaveDelay = -time.Second },
		"renderer":   func(c *config.Config) { c.Renderer = "mustache" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, config.Default().Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := config.Default()
	cfg.Storage.Driver = config.DriverRedis
	cfg.Storage.Redis.DB = 3
	cfg.Chrome.Path = "/usr/bin/chromium"
	require.NoError(t, cfg.Save(path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
