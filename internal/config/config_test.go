package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "ws://localhost:8000/ws", cfg.Backend.URL)
	assert.Equal(t, uint64(5), cfg.Backend.DialAttempts)
	assert.Equal(t, "127.0.0.1:3000", cfg.Dashboard.Addr)
	assert.Equal(t, "127.0.0.1:8000", cfg.Serve.Addr)
	assert.Equal(t, 15*time.Second, cfg.Docker.StopTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Environment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DOCKDASH_BACKEND_URL", "ws://backend:9000/ws")
	t.Setenv("DOCKDASH_DOCKER_STOP_TIMEOUT", "3s")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "ws://backend:9000/ws", cfg.Backend.URL)
	assert.Equal(t, 3*time.Second, cfg.Docker.StopTimeout)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dockdash.yaml")
	content := "serve:\n  addr: 0.0.0.0:8100\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8100", cfg.Serve.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero dial attempts", func(c *Config) { c.Backend.DialAttempts = 0 }, true},
		{"http url", func(c *Config) { c.Backend.URL = "http://localhost:8000/ws" }, true},
		{"negative timeout", func(c *Config) { c.Docker.StopTimeout = -time.Second }, true},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Backend: BackendConfig{URL: "wss://example.com/ws", DialAttempts: 1},
				Log:     LogConfig{Level: "info"},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(LogConfig{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	_, ok := logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)

	logger = NewLogger(LogConfig{Level: "bogus"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
