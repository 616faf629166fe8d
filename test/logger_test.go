package test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	logpkg "github.com/sanpolsito/ultimate-frisbee-stats/internal/logger"
)

func TestLoggerNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *logpkg.LoggerConfig
		expectError bool
		wantLevel   zerolog.Level
	}{
		{
			name: "valid production environment",
			config: &logpkg.LoggerConfig{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				Env:            "prod",
				Level:          "info",
				TimeField:      "timestamp",
				TimeFormat:     "rfc3339",
			},
			expectError: false,
			wantLevel:   zerolog.InfoLevel,
		},
		{
			name: "valid development environment with debug level",
			config: &logpkg.LoggerConfig{
				ServiceName: "test-service",
				Env:         "dev",
				Level:       "debug",
			},
			expectError: false,
			wantLevel:   zerolog.DebugLevel,
		},
		{
			name: "invalid configuration - wrong env",
			config: &logpkg.LoggerConfig{
				ServiceName: "bad-service",
				Env:         "wrong-env", // not allowed by validator
				Level:       "debug",
			},
			expectError: true,
		},
		{
			name: "invalid configuration - wrong level",
			config: &logpkg.LoggerConfig{
				Env:   "prod",
				Level: "loud",
			},
			expectError: true,
		},
		{
			name:        "empty config gets defaults",
			config:      &logpkg.LoggerConfig{},
			expectError: false,
			wantLevel:   zerolog.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := logpkg.New(tt.config)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
		})
	}
}

func TestLoggerDefaults(t *testing.T) {
	cfg := &logpkg.LoggerConfig{}
	_, err := logpkg.New(cfg)
	assert.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "ultimate-frisbee-stats", cfg.ServiceName)
	assert.True(t, cfg.Stacktrace)
}
