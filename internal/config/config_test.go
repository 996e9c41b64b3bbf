package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, DriverFile, cfg.StorageDriver)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
apiBaseURL: https://shop.example.com
requestTimeout: 5s
storageDriver: redis
redisAddr: localhost:6379
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, DriverRedis, cfg.StorageDriver)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apiBaseURL: https://file.example.com\n"), 0o600))

	t.Setenv("STOREFRONT_API_URL", "https://env.example.com")
	t.Setenv("STOREFRONT_STORAGE_DRIVER", "memory")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.APIBaseURL)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
}

func TestLoad_ValidatesDriverSettings(t *testing.T) {
	tests := []struct {
		name   string
		driver string
	}{
		{"redis without addr", DriverRedis},
		{"postgres without url", DriverPostgres},
		{"dynamo without table", DriverDynamo},
		{"unknown driver", "bolt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STOREFRONT_STORAGE_DRIVER", tt.driver)

			_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			assert.Error(t, err)
		})
	}
}

func TestLoad_BadTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("requestTimeout: nonsense\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
