package config

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/viper"
)

// Config is the complete runtime configuration of the shop service.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Cart       CartConfig       `mapstructure:"cart"`
	Orders     OrdersConfig     `mapstructure:"orders"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	RabbitMQ   RabbitMQConfig   `mapstructure:"rabbitmq"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Seed       bool             `mapstructure:"seed"`
}

type AppConfig struct {
	Port            string        `mapstructure:"port"`
	Env             string        `mapstructure:"env"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DBConfig selects the gorm dialector. Driver is "postgres" or "sqlite".
type DBConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// CartConfig controls cart persistence. Store is "db", "redis" or "memory".
type CartConfig struct {
	TTL   time.Duration `mapstructure:"ttl"`
	Store string        `mapstructure:"store"`
}

type OrdersConfig struct {
	Transactional bool   `mapstructure:"transactional"`
	Currency      string `mapstructure:"currency"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MongoConfig configures the order audit trail. An empty URI disables it.
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// RabbitMQConfig configures order events. An empty URL disables publishing.
type RabbitMQConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

type PaginationConfig struct {
	MaxPerPage int `mapstructure:"max_per_page"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.env", "production")
	v.SetDefault("app.shutdown_timeout", 15*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:wooshop.db?cache=shared")
	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("cart.ttl", 7*24*time.Hour)
	v.SetDefault("cart.store", "db")
	v.SetDefault("orders.transactional", true)
	v.SetDefault("orders.currency", "USD")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "wooshop")
	v.SetDefault("mongo.collection", "order_audit")
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.queue", "order_queue")
	v.SetDefault("pagination.max_per_page", 100)
	v.SetDefault("seed", false)
}

// Load reads configuration from defaults, an optional config.yaml and the
// environment. Environment keys use underscores: DB_DRIVER, CART_TTL, ...
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/wooshop")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return errors.Errorf("unsupported db driver %q", c.DB.Driver)
	}
	switch c.Cart.Store {
	case "db", "redis", "memory":
	default:
		return errors.Errorf("unsupported cart store %q", c.Cart.Store)
	}
	if c.Cart.TTL <= 0 {
		return errors.New("cart ttl must be positive")
	}
	if c.Pagination.MaxPerPage <= 0 {
		c.Pagination.MaxPerPage = 100
	}
	return nil
}

// Development reports whether the service runs with developer logging.
func (c *Config) Development() bool {
	return c.App.Env == "development"
}
