package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"MacroCast/pkg/util"
)

// Cache backend modes after normalization.
const (
	BackendMemory   = "memory"
	BackendDatabase = "database"
	BackendRedis    = "redis"
	BackendAuto     = "auto"
)

type Config struct {
	Environment string          `yaml:"environment" default:"development" validate:"required"`
	Server      ServerConfig    `yaml:"server"`
	Log         LogConfig       `yaml:"log"`
	Metrics     MetricsConfig   `yaml:"metrics"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Macro       MacroConfig     `yaml:"macro"`
	Cache       CacheConfig     `yaml:"cache"`
	Database    DatabaseConfig  `yaml:"database"`
	Redis       RedisConfig     `yaml:"redis"`
	Kafka       KafkaConfig     `yaml:"kafka"`
	Prewarm     PrewarmConfig   `yaml:"prewarm"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8000" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error fatal panic"`
	Format string `yaml:"format" default:"json" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stdout"`
}

type MetricsConfig struct {
	Enabled       bool          `yaml:"enabled" default:"true"`
	Path          string        `yaml:"path" default:"/metrics"`
	SlowThreshold time.Duration `yaml:"slow_threshold" default:"2s"`
}

// RateLimitConfig is the per-client token bucket guarding the public API.
type RateLimitConfig struct {
	Enabled  bool    `yaml:"enabled" default:"true"`
	Capacity float64 `yaml:"capacity" default:"30" validate:"gt=0"`
	Refill   float64 `yaml:"refill_per_second" default:"1" validate:"gt=0"`
}

type MacroConfig struct {
	BaseURL            string  `yaml:"base_url" default:"https://api.bcb.gov.br" validate:"required,url"`
	CacheMinutes       int     `yaml:"cache_minutes" default:"180" validate:"min=1"`
	HTTPTimeoutSeconds float64 `yaml:"http_timeout_seconds" default:"10" validate:"min=1"`
	RequestsPerSecond  float64 `yaml:"requests_per_second" default:"5" validate:"gt=0"`
	Burst              int     `yaml:"burst" default:"5" validate:"min=1"`
	FallbackMonths     int     `yaml:"fallback_months" default:"24" validate:"min=1"`
	DefaultHorizon     int     `yaml:"default_horizon" default:"3" validate:"min=0"`
}

// CacheTTL is the lifetime of an entry in both cache tiers.
func (m MacroConfig) CacheTTL() time.Duration {
	return time.Duration(m.CacheMinutes) * time.Minute
}

// HTTPTimeout accepts fractional seconds, e.g. 2.5.
func (m MacroConfig) HTTPTimeout() time.Duration {
	return time.Duration(m.HTTPTimeoutSeconds * float64(time.Second))
}

type CacheConfig struct {
	// Backend is normalized at load time; "auto" resolves to database or memory.
	Backend string `yaml:"backend" default:"memory" validate:"oneof=memory database redis"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	User            string        `yaml:"user" default:"postgres"`
	Password        string        `yaml:"password" default:"postgres"`
	Host            string        `yaml:"host" default:"postgres"`
	Port            int           `yaml:"port" default:"5432"`
	Name            string        `yaml:"name" default:"credito_pj"`
	SSLMode         string        `yaml:"ssl_mode" default:"disable"`
	MaxOpenConns    int           `yaml:"max_open_conns" default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" default:"30m"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" default:"5s"`
}

// DSN returns the connection string, preferring an explicit URL.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix" default:"macrocast"`
}

type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	RequiredAcks int           `yaml:"required_acks" default:"1"`
	Compression  string        `yaml:"compression" default:"snappy"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
}

type PrewarmConfig struct {
	Series      []string `yaml:"series" default:"[\"selic\",\"ipca\",\"pib\"]"`
	Months      int      `yaml:"months" default:"48"`
	Horizon     int      `yaml:"horizon" default:"6"`
	ReportTopic string   `yaml:"report_topic"`
}

var validate = validator.New()

// Default returns a configuration made only of defaults.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads and parses a YAML configuration file. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	c, err := readFile(path)
	if err != nil {
		return nil, err
	}

	c.normalize(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// It is the only supported way to (re)load configuration.
func LoadWithEnv(path string) (*Config, error) {
	return loadWithLookup(path, os.Getenv)
}

func loadWithLookup(path string, getenv func(string) string) (*Config, error) {
	c, err := readFile(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv(getenv)
	c.normalize(getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func readFile(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return c, nil
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("MACRO_CACHE_MINUTES"); v != "" {
		c.Macro.CacheMinutes = util.ParseIntDefault(v, 180)
	}
	if v := firstNonEmpty(getenv("MACRO_HTTP_TIMEOUT_SECONDS"), getenv("MACRO_HTTP_TIMEOUT")); v != "" {
		c.Macro.HTTPTimeoutSeconds = util.ParseFloatDefault(v, 10)
	}
	if v := getenv("MACRO_BCB_BASE_URL"); v != "" {
		c.Macro.BaseURL = v
	}
	if v := getenv("MACRO_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}

	if v := getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := getenv("DB_PASS"); v != "" {
		c.Database.Password = v
	}
	if v := getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := getenv("DB_PORT"); v != "" {
		c.Database.Port = util.ParseIntDefault(v, 5432)
	}
	if v := getenv("DB_NAME"); v != "" {
		c.Database.Name = v
	}

	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}

	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("MACRO_PREWARM_TOPIC"); v != "" {
		c.Prewarm.ReportTopic = v
	}
	if v := getenv("MACRO_PREWARM_SERIES"); v != "" {
		c.Prewarm.Series = util.SplitCSV(v)
	}
	if v := getenv("MACRO_PREWARM_MONTHS"); v != "" {
		c.Prewarm.Months = util.ParseIntDefault(v, 48)
	}
	if v := getenv("MACRO_PREWARM_HORIZON"); v != "" {
		c.Prewarm.Horizon = util.ParseIntDefault(v, 6)
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	if v := getenv("PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
}

// normalize clamps numeric settings to their floors and resolves the cache
// backend mode. Unknown modes fall back to memory.
func (c *Config) normalize(getenv func(string) string) {
	if c.Macro.CacheMinutes < 1 {
		c.Macro.CacheMinutes = 1
	}
	if c.Macro.HTTPTimeoutSeconds < 1 {
		c.Macro.HTTPTimeoutSeconds = 1
	}
	if c.Prewarm.Months < 6 {
		c.Prewarm.Months = 6
	}
	if c.Prewarm.Horizon < 1 {
		c.Prewarm.Horizon = 1
	}

	switch mode := strings.ToLower(strings.TrimSpace(c.Cache.Backend)); mode {
	case "database", "db":
		c.Cache.Backend = BackendDatabase
	case BackendRedis:
		c.Cache.Backend = BackendRedis
	case BackendAuto:
		c.Cache.Backend = BackendMemory
		for _, name := range []string{"DATABASE_URL", "DB_HOST", "DB_NAME"} {
			if getenv(name) != "" {
				c.Cache.Backend = BackendDatabase
				break
			}
		}
	default:
		c.Cache.Backend = BackendMemory
	}

	brokers := c.Kafka.Brokers[:0]
	for _, b := range c.Kafka.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.Kafka.Brokers = brokers
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Prewarm.ReportTopic != "" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("prewarm.report_topic requires kafka.brokers")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
