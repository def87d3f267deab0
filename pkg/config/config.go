package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/scancart-backend/pkg/enums"
)

const (
	EnvPrefix = "SCANCART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv             = "SCANCART_APP_ENV"
	EnvPort               = "SCANCART_APP_PORT"
	EnvLogLevel           = "SCANCART_LOG_LEVEL"
	EnvLogFormat          = "SCANCART_LOG_FORMAT"
	EnvDBDSN              = "SCANCART_DB_DSN"
	EnvRedisURL           = "SCANCART_REDIS_URL"
	EnvStoreDriver        = "SCANCART_STORE_DRIVER"
	EnvStoreKey           = "SCANCART_STORE_KEY"
	EnvCatalogBaseURL     = "SCANCART_CATALOG_BASE_URL"
	EnvCatalogLocale      = "SCANCART_CATALOG_LOCALE"
	EnvCartUnitPrice      = "SCANCART_CART_UNIT_PRICE"
	EnvScannerMode        = "SCANCART_SCANNER_MODE"
	EnvScannerDeviceID    = "SCANCART_SCANNER_DEVICE_ID"
	EnvKafkaEnabled       = "SCANCART_KAFKA_ENABLED"
	EnvKafkaBrokers       = "SCANCART_KAFKA_BROKERS"
	EnvFeatureAutoMigrate = "SCANCART_AUTO_MIGRATE"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Store        StoreConfig
	Catalog      CatalogConfig
	Cart         CartConfig
	Scanner      ScannerConfig
	Kafka        KafkaConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	driver, err := enums.ParseStoreDriver(strings.ToLower(strings.TrimSpace(c.Store.Driver)))
	if err != nil {
		return fmt.Errorf("%s: %w", EnvStoreDriver, err)
	}
	c.Store.Driver = driver.String()

	if strings.TrimSpace(c.Store.Key) == "" {
		return fmt.Errorf("%s must not be empty", EnvStoreKey)
	}

	switch driver {
	case enums.StoreDriverMemory:
		if c.App.IsProd() {
			return fmt.Errorf("%s=memory is not allowed in %s", EnvStoreDriver, AppEnvProd)
		}
	case enums.StoreDriverPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("%s is required for the postgres store", EnvDBDSN)
		}
	case enums.StoreDriverSQLite:
		if c.DB.DSN == "" {
			c.DB.DSN = defaultSQLiteDSN
		}
	}

	mode := strings.ToLower(strings.TrimSpace(c.Scanner.Mode))
	if mode != ScannerModeClient && mode != ScannerModeBus {
		return fmt.Errorf("%s must be %q or %q, got %q", EnvScannerMode, ScannerModeClient, ScannerModeBus, c.Scanner.Mode)
	}
	c.Scanner.Mode = mode
	if mode == ScannerModeBus && strings.TrimSpace(c.Scanner.DeviceID) == "" {
		return fmt.Errorf("%s is required in bus mode", EnvScannerDeviceID)
	}

	if c.NeedsRedis() && c.Redis.URL == "" && c.Redis.Address == "" {
		return fmt.Errorf("%s is required for the redis store or bus scanner", EnvRedisURL)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("%s is required when kafka events are enabled", EnvKafkaBrokers)
	}

	if _, err := c.Cart.Price(); err != nil {
		return fmt.Errorf("%s: %w", EnvCartUnitPrice, err)
	}

	switch strings.ToLower(c.Catalog.Locale) {
	case "en", "fr":
		c.Catalog.Locale = strings.ToLower(c.Catalog.Locale)
	default:
		return fmt.Errorf("%s must be en or fr, got %q", EnvCatalogLocale, c.Catalog.Locale)
	}

	return nil
}

// NeedsRedis reports whether any configured component talks to redis.
func (c *Config) NeedsRedis() bool {
	return c.Store.Driver == enums.StoreDriverRedis.String() || c.Scanner.Mode == ScannerModeBus
}

type AppConfig struct {
	Env          string `envconfig:"SCANCART_APP_ENV" default:"dev"`
	Port         string `envconfig:"SCANCART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SCANCART_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"SCANCART_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"SCANCART_LOG_WARN_STACK" default:"false"`

	ShutdownTimeout time.Duration `envconfig:"SCANCART_APP_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

const defaultSQLiteDSN = "file:scancart.db?_busy_timeout=5000"

type DBConfig struct {
	DSN string `envconfig:"SCANCART_DB_DSN"`

	MaxOpenConns    int           `envconfig:"SCANCART_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SCANCART_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SCANCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SCANCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SCANCART_REDIS_URL"`
	Address      string        `envconfig:"SCANCART_REDIS_ADDR"`
	Password     string        `envconfig:"SCANCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"SCANCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SCANCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SCANCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SCANCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SCANCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SCANCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// StoreConfig selects the durable blob store backing the cart.
type StoreConfig struct {
	Driver string `envconfig:"SCANCART_STORE_DRIVER" default:"memory"`
	Key    string `envconfig:"SCANCART_STORE_KEY" default:"cart"`
}

type CatalogConfig struct {
	BaseURL   string        `envconfig:"SCANCART_CATALOG_BASE_URL" default:"https://world.openfoodfacts.org"`
	Timeout   time.Duration `envconfig:"SCANCART_CATALOG_TIMEOUT" default:"10s"`
	UserAgent string        `envconfig:"SCANCART_CATALOG_USER_AGENT" default:"scancart/1.0"`
	Locale    string        `envconfig:"SCANCART_CATALOG_LOCALE" default:"en"`
}

type CartConfig struct {
	UnitPrice string `envconfig:"SCANCART_CART_UNIT_PRICE" default:"2"`
	Currency  string `envconfig:"SCANCART_CART_CURRENCY" default:"EUR"`
}

// Price parses the configured flat unit price.
func (c CartConfig) Price() (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(c.UnitPrice))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid unit price %q: %w", c.UnitPrice, err)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("unit price must be non-negative, got %s", price)
	}
	return price, nil
}

const (
	ScannerModeClient = "client"
	ScannerModeBus    = "bus"
)

type ScannerConfig struct {
	Mode      string `envconfig:"SCANCART_SCANNER_MODE" default:"client"`
	DeviceID  string `envconfig:"SCANCART_SCANNER_DEVICE_ID"`
	Container string `envconfig:"SCANCART_SCANNER_CONTAINER" default:"scanner"`
}

type KafkaConfig struct {
	Enabled      bool          `envconfig:"SCANCART_KAFKA_ENABLED" default:"false"`
	Brokers      []string      `envconfig:"SCANCART_KAFKA_BROKERS"`
	Topic        string        `envconfig:"SCANCART_KAFKA_TOPIC" default:"cart_events"`
	WriteTimeout time.Duration `envconfig:"SCANCART_KAFKA_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SCANCART_AUTO_MIGRATE" default:"false"`
}
