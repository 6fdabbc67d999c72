package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	ClinicTimezone    string `mapstructure:"CLINIC_TIMEZONE"`
	SlotMinutes       int    `mapstructure:"SLOT_MINUTES"`
	BookingWindowDays int    `mapstructure:"BOOKING_WINDOW_DAYS"`
	WorkdayStart      string `mapstructure:"WORKDAY_START"`
	WorkdayEnd        string `mapstructure:"WORKDAY_END"`

	DefaultPractitionerSlug string `mapstructure:"DEFAULT_PRACTITIONER_SLUG"`
	DefaultPractitionerName string `mapstructure:"DEFAULT_PRACTITIONER_NAME"`

	NotifyRecipient string `mapstructure:"NOTIFY_RECIPIENT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("CLINIC_TIMEZONE", "UTC")
	v.SetDefault("SLOT_MINUTES", 15)
	v.SetDefault("BOOKING_WINDOW_DAYS", 30)
	v.SetDefault("WORKDAY_START", "09:00")
	v.SetDefault("WORKDAY_END", "21:00")
	v.SetDefault("DEFAULT_PRACTITIONER_SLUG", "clinic-owner")
	v.SetDefault("DEFAULT_PRACTITIONER_NAME", "Clinic Owner")
	v.SetDefault("NOTIFY_RECIPIENT", "")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("CLINIC_TIMEZONE")
	v.BindEnv("SLOT_MINUTES")
	v.BindEnv("BOOKING_WINDOW_DAYS")
	v.BindEnv("WORKDAY_START")
	v.BindEnv("WORKDAY_END")
	v.BindEnv("DEFAULT_PRACTITIONER_SLUG")
	v.BindEnv("DEFAULT_PRACTITIONER_NAME")
	v.BindEnv("NOTIFY_RECIPIENT")

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

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active; all requests get admin access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: Set ENV=production and configure JWT_SECRET for production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// JWT_SECRET must be set so real authentication is enforced. Scheduling
// values are checked against the same bounds the settings store enforces.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf(
			"JWT_SECRET must be set when ENV=%q. "+
				"Refusing to start without authentication configuration", c.Env)
	}

	if _, err := time.LoadLocation(c.ClinicTimezone); err != nil {
		return fmt.Errorf("CLINIC_TIMEZONE %q is not a valid IANA timezone: %w", c.ClinicTimezone, err)
	}

	if c.SlotMinutes < 5 || c.SlotMinutes > 60 {
		return fmt.Errorf("SLOT_MINUTES must be between 5 and 60, got %d", c.SlotMinutes)
	}
	if c.BookingWindowDays < 1 || c.BookingWindowDays > 60 {
		return fmt.Errorf("BOOKING_WINDOW_DAYS must be between 1 and 60, got %d", c.BookingWindowDays)
	}

	for _, hhmm := range []struct{ name, value string }{
		{"WORKDAY_START", c.WorkdayStart},
		{"WORKDAY_END", c.WorkdayEnd},
	} {
		if _, err := time.Parse("15:04", hhmm.value); err != nil {
			return fmt.Errorf("%s must be HH:MM, got %q", hhmm.name, hhmm.value)
		}
	}

	return nil
}
