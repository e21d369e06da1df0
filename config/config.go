package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"studyrace/database"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP transport
	HTTPAddr string

	// Discord configuration (bot is disabled when the token is empty)
	DiscordToken   string
	DiscordGuildID string

	// Redis standings cache (disabled when the address is empty)
	RedisAddr         string
	StandingsCacheTTL time.Duration

	// NATS event forwarding (disabled when the URL is empty)
	NATSURL string

	// Economy configuration
	StartingBalance          int64
	MinStake                 int64
	DefaultPeriodGoalMinutes int64

	// Odds configuration
	OddsPriorMinutes int64
	OddsMargin       decimal.Decimal
	OddsMax          decimal.Decimal

	// First day of the study week
	WeekStart time.Weekday

	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// SetForTest replaces the global instance. Pass nil to reset.
func SetForTest(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// NewTestConfig returns a configuration with the defaults and no external services
func NewTestConfig() *Config {
	return &Config{
		HTTPAddr:                 ":0",
		StandingsCacheTTL:        30 * time.Second,
		StartingBalance:          1000,
		MinStake:                 100,
		DefaultPeriodGoalMinutes: 600,
		OddsPriorMinutes:         60,
		OddsMargin:               decimal.RequireFromString("0.10"),
		OddsMax:                  decimal.RequireFromString("99.99"),
		WeekStart:                time.Monday,
		LogLevel:                 "debug",
		Environment:              "test",
	}
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	config := NewTestConfig()
	config.HTTPAddr = getEnvWithDefault("HTTP_ADDR", ":8080")
	config.DatabaseURL = os.Getenv("DATABASE_URL")
	config.DatabaseName = os.Getenv("DATABASE_NAME")
	config.DiscordToken = os.Getenv("DISCORD_TOKEN")
	config.DiscordGuildID = os.Getenv("DISCORD_GUILD_ID")
	config.RedisAddr = os.Getenv("REDIS_ADDR")
	config.NATSURL = os.Getenv("NATS_URL")
	config.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	config.Environment = getEnvWithDefault("ENVIRONMENT", "development")

	var err error
	if config.StartingBalance, err = getInt64("STARTING_BALANCE", config.StartingBalance); err != nil {
		return nil, err
	}
	if config.MinStake, err = getInt64("MIN_STAKE", config.MinStake); err != nil {
		return nil, err
	}
	if config.DefaultPeriodGoalMinutes, err = getInt64("DEFAULT_PERIOD_GOAL_MINUTES", config.DefaultPeriodGoalMinutes); err != nil {
		return nil, err
	}
	if config.OddsPriorMinutes, err = getInt64("ODDS_PRIOR_MINUTES", config.OddsPriorMinutes); err != nil {
		return nil, err
	}
	if v := os.Getenv("ODDS_MARGIN"); v != "" {
		if config.OddsMargin, err = decimal.NewFromString(v); err != nil {
			return nil, fmt.Errorf("invalid ODDS_MARGIN %q: %w", v, err)
		}
	}
	if v := os.Getenv("ODDS_MAX"); v != "" {
		if config.OddsMax, err = decimal.NewFromString(v); err != nil {
			return nil, fmt.Errorf("invalid ODDS_MAX %q: %w", v, err)
		}
	}
	if v := os.Getenv("STANDINGS_CACHE_TTL"); v != "" {
		if config.StandingsCacheTTL, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("invalid STANDINGS_CACHE_TTL %q: %w", v, err)
		}
	}
	if v := os.Getenv("WEEK_START"); v != "" {
		if config.WeekStart, err = parseWeekday(v); err != nil {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the invariants the services rely on
func (c *Config) Validate() error {
	if c.Environment != "test" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MinStake <= 0 {
		return fmt.Errorf("MIN_STAKE must be positive")
	}
	if c.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE cannot be negative")
	}
	if c.OddsPriorMinutes <= 0 {
		return fmt.Errorf("ODDS_PRIOR_MINUTES must be positive")
	}
	if c.OddsMargin.IsNegative() || c.OddsMargin.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("ODDS_MARGIN must be in [0, 1)")
	}
	if c.OddsMax.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("ODDS_MAX must be at least 1")
	}
	return nil
}

func getEnvWithDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return parsed, nil
}

func parseWeekday(v string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), v) || strings.EqualFold(d.String()[:3], v) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid WEEK_START %q", v)
}
