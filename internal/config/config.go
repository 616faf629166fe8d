package config

import (
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/logger"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/model"
)

// Config aggregates every tunable of the service. Secrets (postgres user and
// password) are expected to come from the environment, not the yaml file.
type Config struct {
	App      AppConfig           `mapstructure:"app"`
	Logger   logger.LoggerConfig `mapstructure:"logger"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Match    MatchDefaults       `mapstructure:"match"`
}

type AppConfig struct {
	Name            string `mapstructure:"name"`
	Version         string `mapstructure:"version"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"dbname"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
}

// MatchDefaults seeds the rule config of a new match when the request omits
// one. The values mirror common tournament settings.
type MatchDefaults struct {
	TargetPoints           int `mapstructure:"target_points"`
	TimeLimitMinutes       int `mapstructure:"time_limit_minutes"`
	SoftCapMinutes         int `mapstructure:"soft_cap_minutes"`
	HardCapMinutes         int `mapstructure:"hard_cap_minutes"`
	HalftimePoints         int `mapstructure:"halftime_points"`
	HalftimeMinutes        int `mapstructure:"halftime_minutes"`
	TimeoutDurationSeconds int `mapstructure:"timeout_duration_seconds"`
	TimeoutsPerTeam        int `mapstructure:"timeouts_per_team"`
}

// RuleSet converts the defaults into the match-level config the engine uses.
func (d MatchDefaults) RuleSet() model.MatchConfig {
	return model.MatchConfig{
		TargetPoints:           d.TargetPoints,
		TimeLimitMinutes:       d.TimeLimitMinutes,
		SoftCapMinutes:         d.SoftCapMinutes,
		HardCapMinutes:         d.HardCapMinutes,
		HalftimePoints:         d.HalftimePoints,
		HalftimeMinutes:        d.HalftimeMinutes,
		TimeoutDurationSeconds: d.TimeoutDurationSeconds,
		TimeoutsPerTeam:        d.TimeoutsPerTeam,
	}
}
