package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string        `mapstructure:"PORT"`
	Env                string        `mapstructure:"ENV"`
	AuthMode           string        `mapstructure:"AUTH_MODE"`
	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	CareAPIURL         string        `mapstructure:"CARE_API_URL"`
	CareAPIToken       string        `mapstructure:"CARE_API_TOKEN"`
	CareAPITimeout     time.Duration `mapstructure:"CARE_API_TIMEOUT"`
	BreakerMaxFailures uint32        `mapstructure:"BREAKER_MAX_FAILURES"`
	CORSOrigins        []string      `mapstructure:"CORS_ORIGINS"`
	DefaultDuration    int           `mapstructure:"DEFAULT_VISIT_DURATION"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8600")
	v.SetDefault("ENV", "development")
	v.SetDefault("AUTH_MODE", "") // auto-detect: "" -> inferred from ENV
	v.SetDefault("CARE_API_TIMEOUT", "10s")
	v.SetDefault("BREAKER_MAX_FAILURES", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("DEFAULT_VISIT_DURATION", 60)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("AUTH_MODE")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("CARE_API_URL")
	v.BindEnv("CARE_API_TOKEN")
	v.BindEnv("CARE_API_TIMEOUT")
	v.BindEnv("BREAKER_MAX_FAILURES")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("DEFAULT_VISIT_DURATION")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.CareAPIURL == "" {
		return nil, fmt.Errorf("CARE_API_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active; all requests get planner access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: Set ENV=production and configure JWT_SECRET for production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the gateway is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedAuthMode returns the effective auth mode. If AUTH_MODE is explicitly
// set, it is returned. Otherwise, the mode is inferred:
//   - ENV=development → "development" (no auth, all requests get planner access)
//   - Otherwise       → "bearer" (HS256 tokens signed with JWT_SECRET)
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return "development"
	}
	return "bearer"
}

// Validate checks that the configuration is safe to run. In non-development
// modes JWT_SECRET must be set so that real bearer authentication is enforced,
// and the default visit duration must be one of the offered duration options.
func (c *Config) Validate() error {
	mode := c.ResolvedAuthMode()
	if mode != "development" && mode != "bearer" {
		return fmt.Errorf("AUTH_MODE must be \"development\" or \"bearer\", got %q", mode)
	}
	if mode == "bearer" && c.JWTSecret == "" {
		return fmt.Errorf(
			"JWT_SECRET must be set when AUTH_MODE is \"bearer\" (current ENV=%q). "+
				"Refusing to start without authentication configuration", c.Env)
	}

	if c.CareAPITimeout <= 0 {
		return fmt.Errorf("CARE_API_TIMEOUT must be positive, got %s", c.CareAPITimeout)
	}

	switch c.DefaultDuration {
	case 15, 30, 45, 60, 90, 120, 180, 240:
	default:
		return fmt.Errorf("DEFAULT_VISIT_DURATION must be one of 15/30/45/60/90/120/180/240, got %d", c.DefaultDuration)
	}

	return nil
}
