// Package config loads the service configuration from the environment.
//
// Variables use the POSTSAPI_ prefix and the first underscore after it
// separates the section from the key:
//
//	POSTSAPI_SERVER_PORT       -> server.port
//	POSTSAPI_STORE_BADGER_PATH -> store.badger_path
//	POSTSAPI_LOG_LEVEL         -> log.level
//
// Dotenv files are read first; variables already present in the process
// environment take precedence over them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "POSTSAPI_"

// DefaultEnvFiles are loaded by the serve command when present.
var DefaultEnvFiles = []string{".env.dev", ".env"}

const (
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Env    string       `koanf:"env" validate:"required"`
	Server ServerConfig `koanf:"server"`
	Store  StoreConfig  `koanf:"store"`
	Log    LogConfig    `koanf:"log"`
}

type ServerConfig struct {
	Port            string        `koanf:"port" validate:"required,numeric"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins" validate:"min=1"`
}

// StoreConfig selects the document store backing both collections.
type StoreConfig struct {
	Backend       string `koanf:"backend" validate:"oneof=badger redis mongo"`
	BadgerPath    string `koanf:"badger_path"`
	RedisAddr     string `koanf:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"gte=0"`
	MongoURI      string `koanf:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase string `koanf:"mongo_database" validate:"required_if=Backend mongo"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

// Default returns the configuration used for anything the environment leaves unset.
func Default() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port:            "3000",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Store: StoreConfig{
			Backend:       BackendBadger,
			BadgerPath:    "data/badger",
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "postsapi",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the given dotenv files (missing ones are skipped), then the
// environment, and validates the result.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(env.ProviderWithValue(envPrefix, ".", mapEnv), nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	// PORT is honoured for platforms that only set that.
	if port := os.Getenv("PORT"); port != "" && !k.Exists("server.port") {
		if err := k.Set("server.port", port); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	// Production logs are always JSON.
	if cfg.IsProduction() {
		cfg.Log.Pretty = false
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// mapEnv turns POSTSAPI_SERVER_CORS_ORIGINS into server.cors_origins. Empty
// values are skipped so they do not clear a default.
func mapEnv(name, value string) (string, any) {
	if value == "" {
		return "", nil
	}

	key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	key = strings.Replace(key, "_", ".", 1)

	if key == "server.cors_origins" {
		origins := strings.Split(value, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		return key, origins
	}
	return key, value
}

// Address is the listen address for the HTTP server.
func (c *Config) Address() string {
	return ":" + c.Server.Port
}

// IsProduction reports whether Env names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
