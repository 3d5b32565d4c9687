package config

import (
	"fmt"
	"strings"
	"sync"

	"quorum-booking/core/constants"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Directory DirectoryConfig `mapstructure:"directory"`
}

type AppConfig struct {
	Name      string `mapstructure:"name"`
	Env       string `mapstructure:"env"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StoreConfig selects the consensus store backend: "memory" or "postgres".
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // in minutes
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type QueueConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	Concurrency int  `mapstructure:"concurrency"`
	// EmbedWorker runs the notice worker inside the serve process.
	EmbedWorker bool `mapstructure:"embed_worker"`
}

type RoomConfig struct {
	Name     string `mapstructure:"name"`
	Capacity int    `mapstructure:"capacity"`
}

type CatalogConfig struct {
	Rooms []RoomConfig `mapstructure:"rooms"`
	Slots []string     `mapstructure:"slots"`
}

type UserConfig struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

type DirectoryConfig struct {
	Users []UserConfig `mapstructure:"users"`
}

var (
	mu       sync.RWMutex
	instance *Config
)

// Load reads .env (if present), an optional config file and the environment.
// Environment keys use "_" in place of ".", e.g. SERVER_PORT, STORE_DRIVER.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mu.Lock()
	instance = &cfg
	mu.Unlock()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "quorum-booking")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)

	v.SetDefault("store.driver", constants.StoreDriverMemory)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "quorum_booking")
	v.SetDefault("database.sslmode", constants.DatabaseSSLMode)
	v.SetDefault("database.max_open_conns", constants.DatabaseMaxOpenConns)
	v.SetDefault("database.max_idle_conns", constants.DatabaseMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", constants.DatabaseConnMaxLifetime)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.embed_worker", false)
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	switch c.Store.Driver {
	case constants.StoreDriverMemory, constants.StoreDriverPostgres:
	default:
		return fmt.Errorf("invalid store.driver %q: must be %q or %q",
			c.Store.Driver, constants.StoreDriverMemory, constants.StoreDriverPostgres)
	}
	if c.Queue.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("queue.enabled requires redis.enabled")
	}
	for _, r := range c.Catalog.Rooms {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("catalog room without a name")
		}
	}
	return nil
}

// Get returns the loaded config and panics if Load was never called.
func Get() *Config {
	cfg, ok := GetSafe()
	if !ok {
		panic("config not initialized")
	}
	return cfg
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}
