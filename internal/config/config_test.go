package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                "production",
		DBDriver:           "postgres",
		DBSSLMode:          "require",
		JWTSecret:          "secure-secret-at-least-32-chars-long",
		DBPassword:         "secure-password",
		Port:               "8080",
		StorageAccessKey:   "talenta-prod",
		RedisURL:           "redis://localhost:6379",
		TracingSampleRatio: 0.5,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProductionSecrets(t *testing.T) {
	c := validConfig()
	c.JWTSecret = defaultJWTSecret
	assert.Error(t, c.Validate())

	c = validConfig()
	c.JWTSecret = "short"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.StorageAccessKey = "minioadmin"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.DBDriver = "sqlite"
	assert.Error(t, c.Validate())
}

func TestConfig_ValidateRejectsBadValues(t *testing.T) {
	c := validConfig()
	c.DBDriver = "mysql"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.TracingSampleRatio = 1.5
	assert.Error(t, c.Validate())

	c = validConfig()
	c.AvatarMaxMB = -1
	assert.Error(t, c.Validate())
}

func TestMaxBytes(t *testing.T) {
	assert.Equal(t, int64(5<<20), MaxBytes(5, 50))
	assert.Equal(t, int64(50<<20), MaxBytes(0, 50))
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("STORAGE_PUBLIC_URL")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("STORAGE_PUBLIC_URL", "http://cdn.local/ ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "http://cdn.local", c.StoragePublicURL)
	assert.Equal(t, 50, c.PostMediaMaxMB)
	assert.Equal(t, "media", c.StorageBucket)
}
