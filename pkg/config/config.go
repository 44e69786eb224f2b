package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Cart store backends.
const (
	CartBackendMemory   = "memory"
	CartBackendRedis    = "redis"
	CartBackendDatabase = "database"
)

type Config struct {
	App     AppConfig
	Cart    CartConfig
	Redis   RedisConfig
	DB      DBConfig
	Catalog CatalogConfig
	Orders  OrdersConfig
	JWT     JWTConfig
	CORS    CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FRESHSOUQ_APP_ENV" required:"true"`
	Port         string `envconfig:"FRESHSOUQ_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FRESHSOUQ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FRESHSOUQ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CartConfig controls the cart state engine and its persistence backend.
type CartConfig struct {
	Backend   string `envconfig:"FRESHSOUQ_CART_BACKEND" default:"memory"`
	KeyPrefix string `envconfig:"FRESHSOUQ_CART_KEY_PREFIX" default:"cart"`

	// TTL expires idle carts. Zero keeps carts forever; only the redis
	// backend honors a non-zero value.
	TTL time.Duration `envconfig:"FRESHSOUQ_CART_TTL" default:"0"`
}

func (c CartConfig) validate() error {
	switch c.Backend {
	case CartBackendMemory, CartBackendRedis, CartBackendDatabase:
		return nil
	default:
		return fmt.Errorf("unknown cart backend %q", c.Backend)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"FRESHSOUQ_REDIS_URL"`
	Address      string        `envconfig:"FRESHSOUQ_REDIS_ADDR"`
	Password     string        `envconfig:"FRESHSOUQ_REDIS_PASSWORD"`
	DB           int           `envconfig:"FRESHSOUQ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FRESHSOUQ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FRESHSOUQ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FRESHSOUQ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FRESHSOUQ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FRESHSOUQ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type DBConfig struct {
	DSN    string `envconfig:"FRESHSOUQ_DB_DSN"`
	Driver string `envconfig:"FRESHSOUQ_DB_DRIVER" default:"sqlite"`

	Host     string `envconfig:"FRESHSOUQ_DB_HOST"`
	Port     int    `envconfig:"FRESHSOUQ_DB_PORT" default:"5432"`
	User     string `envconfig:"FRESHSOUQ_DB_USER"`
	Password string `envconfig:"FRESHSOUQ_DB_PASSWORD"`
	Name     string `envconfig:"FRESHSOUQ_DB_NAME"`
	SSLMode  string `envconfig:"FRESHSOUQ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FRESHSOUQ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FRESHSOUQ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FRESHSOUQ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FRESHSOUQ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	switch db.Driver {
	case "sqlite":
		db.DSN = "file:freshsouq.db?cache=shared"
		return nil
	case "postgres":
		if db.Host == "" || db.User == "" || db.Name == "" {
			// Assembled lazily; only required when the database backend is used.
			return nil
		}
		db.DSN = fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			url.QueryEscape(db.User),
			url.QueryEscape(db.Password),
			db.Host,
			db.Port,
			db.Name,
			db.SSLMode,
		)
		return nil
	default:
		return fmt.Errorf("unknown db driver %q", db.Driver)
	}
}

// CatalogConfig points at the product catalog service.
type CatalogConfig struct {
	BaseURL string        `envconfig:"FRESHSOUQ_CATALOG_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"FRESHSOUQ_CATALOG_TIMEOUT" default:"10s"`
}

// OrdersConfig points at the order service.
type OrdersConfig struct {
	BaseURL string        `envconfig:"FRESHSOUQ_ORDERS_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"FRESHSOUQ_ORDERS_TIMEOUT" default:"15s"`
}

type JWTConfig struct {
	Secret string `envconfig:"FRESHSOUQ_JWT_SECRET"`
	Issuer string `envconfig:"FRESHSOUQ_JWT_ISSUER" default:"freshsouq"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"FRESHSOUQ_CORS_ORIGINS" default:"http://localhost:4200"`
}
