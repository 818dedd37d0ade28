package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log       Logger          `mapstructure:"logger"`
	DB        Database        `mapstructure:"database"`
	API       API             `mapstructure:"api"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
	PriceFeed PriceFeed       `mapstructure:"price_feed"`
	Sentiment Sentiment       `mapstructure:"sentiment"`
	Inference Inference       `mapstructure:"inference"`
	Risk      Risk            `mapstructure:"risk"`
	Tier      Tier            `mapstructure:"tier"`
	Cache     Cache           `mapstructure:"cache"`
	Alert     AlertingWebhook `mapstructure:"alert"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type Scheduler struct {
	// CronExpression drives the recurring cycle trigger, hourly in production.
	CronExpression  string        `mapstructure:"cron_expression"`
	CycleInterval   time.Duration `mapstructure:"cycle_interval"`
	BatchSize       int           `mapstructure:"batch_size"`
	MaxConcurrency  int           `mapstructure:"max_concurrency"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

type PriceFeed struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxRetries          int           `mapstructure:"max_retries"`
	RetryBackoff        time.Duration `mapstructure:"retry_backoff"`
}

type SentimentSource struct {
	Name                string        `mapstructure:"name"`
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	Weight              float64       `mapstructure:"weight"`
}

type Sentiment struct {
	Sources []SentimentSource `mapstructure:"sources"`
}

type Inference struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	ModelVersion        string        `mapstructure:"model_version"`
	// Signal threshold table supplied by the model owner. Scores at or above
	// BuyThreshold map to buy, at or below SellThreshold map to sell.
	BuyThreshold  float64 `mapstructure:"buy_threshold"`
	SellThreshold float64 `mapstructure:"sell_threshold"`
}

type Risk struct {
	VolatilityWindow       int     `mapstructure:"volatility_window"`
	MediumVolThreshold     float64 `mapstructure:"medium_vol_threshold"`
	HighVolThreshold       float64 `mapstructure:"high_vol_threshold"`
	LowConfidenceThreshold float64 `mapstructure:"low_confidence_threshold"`
}

type Tier struct {
	FreeMaxTrackedStocks int `mapstructure:"free_max_tracked_stocks"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type AlertingWebhook struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scheduler.CronExpression == "" {
		c.Scheduler.CronExpression = "0 * * * *"
	}
	if c.Scheduler.CycleInterval <= 0 {
		c.Scheduler.CycleInterval = time.Hour
	}
	if c.Scheduler.BatchSize <= 0 {
		c.Scheduler.BatchSize = 20
	}
	if c.Scheduler.MaxConcurrency <= 0 {
		c.Scheduler.MaxConcurrency = 5
	}
	if c.Scheduler.TimeoutDuration <= 0 {
		c.Scheduler.TimeoutDuration = 30 * time.Minute
	}
	if c.PriceFeed.MaxRetries <= 0 {
		c.PriceFeed.MaxRetries = 3
	}
	if c.PriceFeed.RetryBackoff <= 0 {
		c.PriceFeed.RetryBackoff = 500 * time.Millisecond
	}
	if c.Tier.FreeMaxTrackedStocks <= 0 {
		c.Tier.FreeMaxTrackedStocks = 5
	}
}
