package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/util"
)

type Config struct {
	Environment string          `yaml:"environment" default:"development" validate:"oneof=development staging production test"`
	Server      ServerConfig    `yaml:"server"`
	Log         LogConfig       `yaml:"log"`
	Metrics     MetricsConfig   `yaml:"metrics"`
	Tracing     TracingConfig   `yaml:"tracing"`
	ClickHouse  ClickHouse      `yaml:"clickhouse"`
	Postgres    Postgres        `yaml:"postgres"`
	Redis       Redis           `yaml:"redis"`
	Kafka       Kafka           `yaml:"kafka"`
	Analysis    Analysis        `yaml:"analysis"`
	Sentiment   Sentiment       `yaml:"sentiment"`
	RateLimit   RateLimit       `yaml:"ratelimit"`
	Portfolio   PortfolioConfig `yaml:"portfolio"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" default:"2s"`
	CORS            bool          `yaml:"cors" default:"true"`
}

type LogConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
	Output     string `yaml:"output" default:"stdout"`
	MaxSizeMB  int    `yaml:"max_size_mb" default:"100"`
	MaxBackups int    `yaml:"max_backups" default:"3"`
	MaxAgeDays int    `yaml:"max_age_days" default:"14"`
	Compress   bool   `yaml:"compress"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name" default:"capitalmarkets-agents"`
	Output      string `yaml:"output" default:"stdout"`
	PrettyPrint bool   `yaml:"pretty_print"`
}

type ClickHouse struct {
	Host             string        `yaml:"host" default:"localhost" validate:"required"`
	Port             int           `yaml:"port" default:"9000" validate:"min=1,max=65535"`
	Database         string        `yaml:"database" default:"market" validate:"required"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	Compression      string        `yaml:"compression" default:"lz4" validate:"omitempty,oneof=lz4 zstd none"`
	MaxOpenConns     int           `yaml:"max_open_conns" default:"10"`
	MaxIdleConns     int           `yaml:"max_idle_conns" default:"5"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	InitSchema       bool          `yaml:"init_schema"`
}

type Postgres struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns" default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" default:"30m"`
	InitSchema      bool          `yaml:"init_schema"`
}

type Redis struct {
	Enabled      bool          `yaml:"enabled" default:"true"`
	Addr         string        `yaml:"addr" default:"localhost:6379"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"pool_size" default:"10"`
	MinIdleConns int           `yaml:"min_idle_conns" default:"2"`
	PoolTimeout  time.Duration `yaml:"pool_timeout" default:"4s"`
	Prefix       string        `yaml:"prefix" default:"capm"`
	ReportTTL    time.Duration `yaml:"report_ttl" default:"24h"`
}

type Kafka struct {
	Brokers  []string      `yaml:"brokers"`
	Producer KafkaProducer `yaml:"producer"`
	Consumer KafkaConsumer `yaml:"consumer"`
}

type KafkaProducer struct {
	Enabled      bool          `yaml:"enabled"`
	ReportTopic  string        `yaml:"report_topic" default:"portfolio.reports"`
	RequiredAcks int           `yaml:"required_acks" default:"-1"`
	Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd none"`
	MaxAttempts  int           `yaml:"max_attempts" default:"3"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	BatchTimeout time.Duration `yaml:"batch_timeout" default:"50ms"`
}

type KafkaConsumer struct {
	Enabled      bool          `yaml:"enabled"`
	RequestTopic string        `yaml:"request_topic" default:"portfolio.analysis.requests"`
	GroupID      string        `yaml:"group_id" default:"capitalmarkets-agents"`
	Workers      int           `yaml:"workers" default:"2" validate:"min=1"`
	BufferSize   int           `yaml:"buffer_size" default:"64"`
	RetryMax     int           `yaml:"retry_max" default:"3"`
	BackoffMin   time.Duration `yaml:"backoff_min" default:"200ms"`
	BackoffMax   time.Duration `yaml:"backoff_max" default:"5s"`
	DLQTopic     string        `yaml:"dlq_topic" default:"portfolio.analysis.requests.dlq"`
}

type Analysis struct {
	Interval     string        `yaml:"interval" default:"1d" validate:"oneof=1h 4h 1d"`
	ShortMA      int           `yaml:"short_ma" default:"9" validate:"min=1"`
	MidMA        int           `yaml:"mid_ma" default:"21" validate:"min=1"`
	LongMA       int           `yaml:"long_ma" default:"50" validate:"min=1"`
	RSIPeriod    int           `yaml:"rsi_period" default:"14" validate:"min=1"`
	VolumePeriod int           `yaml:"volume_period" default:"21" validate:"min=1"`
	VWAPPeriod   int           `yaml:"vwap_period" default:"14" validate:"min=1"`
	AssetTimeout time.Duration `yaml:"asset_timeout" default:"30s"`
	Concurrency  int           `yaml:"concurrency" default:"4" validate:"min=1"`
	LockTTL      time.Duration `yaml:"lock_ttl" default:"5m"`
	BarRate      float64       `yaml:"bar_rate" default:"20"`
	BarBurst     int           `yaml:"bar_burst" default:"40"`
	MaxBars      int           `yaml:"max_bars" default:"1000" validate:"min=1"`
}

// SentimentSource selects where items of one kind come from.
type SentimentSource struct {
	Backend  string        `yaml:"backend" default:"none" validate:"oneof=postgres http none"`
	Table    string        `yaml:"table"`
	URL      string        `yaml:"url"`
	Path     string        `yaml:"path"`
	Timeout  time.Duration `yaml:"timeout" default:"3s"`
	Attempts int           `yaml:"attempts" default:"3"`
}

type Sentiment struct {
	News     SentimentSource `yaml:"news"`
	Social   SentimentSource `yaml:"social"`
	MaxItems int             `yaml:"max_items" default:"100" validate:"min=1"`
}

type RateLimit struct {
	AnalyzePerSecond float64       `yaml:"analyze_per_second" default:"0.5"`
	AnalyzeBurst     int           `yaml:"analyze_burst" default:"2"`
	IdleTTL          time.Duration `yaml:"idle_ttl" default:"10m"`
}

type Allocation struct {
	Asset       string  `yaml:"asset" validate:"required"`
	AssetClass  string  `yaml:"asset_class"`
	Description string  `yaml:"description"`
	Percentage  float64 `yaml:"allocation_percentage" validate:"gte=0,lte=100"`
}

type PortfolioConfig struct {
	ID          string       `yaml:"portfolio_id" default:"default"`
	Allocations []Allocation `yaml:"allocations" validate:"dive"`
}

var validate = validator.New()

// Load reads a YAML configuration file over the defaults. An empty path yields defaults only.
func Load(path string) (*Config, error) {
	c, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func load(path string) (*Config, error) {
	var c Config
	// Defaults go first so explicit false and zero values in the file win.
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	c.Sentiment.News.fill("news_items", "/news")
	c.Sentiment.Social.fill("social_items", "/social")
	return &c, nil
}

func (s *SentimentSource) fill(table, path string) {
	if s.Table == "" {
		s.Table = table
	}
	if s.Path == "" {
		s.Path = path
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitCSV(v)
	}
	if v := os.Getenv("REPORT_TOPIC"); v != "" {
		c.Kafka.Producer.ReportTopic = v
	}
	c.Analysis.ShortMA = util.ParseIntDefault(os.Getenv("SHORT_MA"), c.Analysis.ShortMA)
	c.Analysis.MidMA = util.ParseIntDefault(os.Getenv("MID_MA"), c.Analysis.MidMA)
	c.Analysis.LongMA = util.ParseIntDefault(os.Getenv("LONG_MA"), c.Analysis.LongMA)
	c.Analysis.RSIPeriod = util.ParseIntDefault(os.Getenv("RSI_PERIOD"), c.Analysis.RSIPeriod)
	c.Analysis.VolumePeriod = util.ParseIntDefault(os.Getenv("VOLUME_PERIOD"), c.Analysis.VolumePeriod)
	c.Analysis.VWAPPeriod = util.ParseIntDefault(os.Getenv("VWAP_PERIOD"), c.Analysis.VWAPPeriod)
}

// Validate checks struct tags and the rules that span several fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	var errs []error
	a := c.Analysis
	if !(a.ShortMA < a.MidMA && a.MidMA < a.LongMA) {
		errs = append(errs, fmt.Errorf("analysis: moving average windows must increase, got %d/%d/%d", a.ShortMA, a.MidMA, a.LongMA))
	}
	for name, src := range map[string]SentimentSource{"news": c.Sentiment.News, "social": c.Sentiment.Social} {
		switch src.Backend {
		case "http":
			if src.URL == "" {
				errs = append(errs, fmt.Errorf("sentiment.%s.url is required for the http backend", name))
			}
		case "postgres":
			if c.Postgres.DSN == "" {
				errs = append(errs, fmt.Errorf("postgres.dsn is required for the %s postgres backend", name))
			}
		}
	}
	if (c.Kafka.Producer.Enabled || c.Kafka.Consumer.Enabled) && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled"))
	}
	return errors.Join(errs...)
}
