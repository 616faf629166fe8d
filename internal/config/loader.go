package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads the yaml file at path and overlays APP_* environment variables
// (APP_POSTGRES_PASSWORD overrides postgres.password, and so on).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ultimate-frisbee-stats")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.read_timeout", 10)
	v.SetDefault("app.write_timeout", 10)
	v.SetDefault("app.shutdown_timeout", 15)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	// Registering the secret keys lets AutomaticEnv feed them through Unmarshal.
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", 1800)
	v.SetDefault("postgres.max_conn_idle_time", 300)
	v.SetDefault("postgres.health_check_period", 60)

	v.SetDefault("match.target_points", 15)
	v.SetDefault("match.time_limit_minutes", 100)
	v.SetDefault("match.soft_cap_minutes", 75)
	v.SetDefault("match.hard_cap_minutes", 100)
	v.SetDefault("match.halftime_points", 8)
	v.SetDefault("match.halftime_minutes", 50)
	v.SetDefault("match.timeout_duration_seconds", 70)
	v.SetDefault("match.timeouts_per_team", 2)
}

func (c *Config) validate() error {
	var missing []string
	if c.Postgres.User == "" {
		missing = append(missing, "postgres.user")
	}
	if c.Postgres.Password == "" {
		missing = append(missing, "postgres.password")
	}
	if c.Postgres.DBName == "" {
		missing = append(missing, "postgres.dbname")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config values: %s", strings.Join(missing, ", "))
	}
	if c.Match.TimeLimitMinutes <= 0 {
		return fmt.Errorf("match.time_limit_minutes must be positive, got %d", c.Match.TimeLimitMinutes)
	}
	return nil
}
