package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validTestConfig() *Config {
	return &Config{
		Env:                  "test",
		Port:                 "8390",
		JWTSecret:            "secure-secret-at-least-32-chars-long",
		DBPassword:           "secure-password",
		DBSSLMode:            "disable",
		RedisURL:             "redis://localhost:6379",
		ImageMaxUploadSizeMB: 10,
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid test config", func(t *testing.T) {
		assert.NoError(t, validTestConfig().Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		c := validTestConfig()
		c.Port = ""
		assert.Error(t, c.Validate())
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		c := validTestConfig()
		c.JWTSecret = ""
		assert.Error(t, c.Validate())
	})

	t.Run("non-positive upload cap", func(t *testing.T) {
		c := validTestConfig()
		c.ImageMaxUploadSizeMB = 0
		assert.Error(t, c.Validate())
	})
}

func TestConfig_ValidateProduction(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"default jwt secret rejected", func(c *Config) {
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"short jwt secret rejected", func(c *Config) {
			c.JWTSecret = "short"
		}, true},
		{"default db password rejected", func(c *Config) {
			c.DBPassword = "password"
		}, true},
		{"ssl disable rejected", func(c *Config) {
			c.DBSSLMode = "disable"
		}, true},
		{"missing image host key rejected", func(c *Config) {
			c.ImageHostAPIKey = ""
		}, true},
		{"fully hardened accepted", func(_ *Config) {}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validTestConfig()
			c.Env = "production"
			c.DBSSLMode = "require"
			c.ImageHostAPIKey = "prod-api-key"
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
