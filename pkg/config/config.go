package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
		// CollectTopic, when set, aggregates error logs and ships them to
		// this Kafka topic.
		CollectTopic string `yaml:"collect_topic"`
	} `yaml:"logging"`
	Pipeline struct {
		Bars       int           `yaml:"bars"`
		Parallel   int           `yaml:"parallel"`
		Cron       string        `yaml:"cron"`
		RunTimeout time.Duration `yaml:"run_timeout"`
		RunOnStart bool          `yaml:"run_on_start"`
	} `yaml:"pipeline"`
	Universe struct {
		Equities []string `yaml:"equities"`
		Crypto   []string `yaml:"crypto"`
	} `yaml:"universe"`
	Vendors struct {
		Timeout           time.Duration `yaml:"timeout"`
		StooqURL          string        `yaml:"stooq_url"`
		YahooURL          string        `yaml:"yahoo_url"`
		BinanceURL        string        `yaml:"binance_url"`
		CoinGeckoURL      string        `yaml:"coingecko_url"`
		BinanceFuturesURL string        `yaml:"binance_futures_url"`
	} `yaml:"vendors"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("EQUITY_SYMBOLS"); v != "" {
		c.Universe.Equities = strings.Split(v, ",")
	}
	if v := os.Getenv("CRYPTO_SYMBOLS"); v != "" {
		c.Universe.Crypto = strings.Split(v, ",")
	}
	if v := os.Getenv("PIPELINE_CRON"); v != "" {
		c.Pipeline.Cron = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Pipeline.Bars == 0 {
		c.Pipeline.Bars = 60
	}
	if c.Pipeline.Parallel == 0 {
		c.Pipeline.Parallel = 8
	}
	if c.Pipeline.Cron == "" {
		c.Pipeline.Cron = "0 7 * * *"
	}
	if c.Pipeline.RunTimeout == 0 {
		c.Pipeline.RunTimeout = 10 * time.Minute
	}
	if c.Vendors.Timeout == 0 {
		c.Vendors.Timeout = 15 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Universe.Equities)+len(c.Universe.Crypto) == 0 {
		return fmt.Errorf("universe cannot be empty")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty")
	}
	if c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required")
	}
	return nil
}
