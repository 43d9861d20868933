package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Hub      HubConfig
	Sync     SyncConfig
	Redis    RedisConfig
	Host     HostConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type HubConfig struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

type SyncConfig struct {
	Concurrency int
	BaseDir     string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type HostConfig struct {
	PluginDir    string
	Method       string
	WatchEnabled bool
	Debounce     time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "checkpoint_registry")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("HUB_ENDPOINT", "https://huggingface.co")
	v.SetDefault("HUB_TOKEN", "")
	v.SetDefault("HUB_TIMEOUT", "30s")

	v.SetDefault("SYNC_CONCURRENCY", 4)
	v.SetDefault("SYNC_BASE_DIR", "./checkpoints")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TTL", "5m")

	v.SetDefault("HOST_PLUGIN_DIR", "")
	v.SetDefault("HOST_INSTALL_METHOD", "link")
	v.SetDefault("HOST_WATCH_ENABLED", true)
	v.SetDefault("HOST_WATCH_DEBOUNCE", "2s")

	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: duration(v, "DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Hub: HubConfig{
			Endpoint: v.GetString("HUB_ENDPOINT"),
			Token:    v.GetString("HUB_TOKEN"),
			Timeout:  duration(v, "HUB_TIMEOUT", 30*time.Second),
		},
		Sync: SyncConfig{
			Concurrency: v.GetInt("SYNC_CONCURRENCY"),
			BaseDir:     v.GetString("SYNC_BASE_DIR"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      duration(v, "REDIS_TTL", 5*time.Minute),
		},
		Host: HostConfig{
			PluginDir:    v.GetString("HOST_PLUGIN_DIR"),
			Method:       v.GetString("HOST_INSTALL_METHOD"),
			WatchEnabled: v.GetBool("HOST_WATCH_ENABLED"),
			Debounce:     duration(v, "HOST_WATCH_DEBOUNCE", 2*time.Second),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
