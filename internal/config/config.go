package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPConfig struct {
	Port           int           `yaml:"port" env:"PORT" env-default:"8080"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"1m"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"HTTP_REQUEST_TIMEOUT" env-default:"5s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"https://*,http://*"`
}

type DBConfig struct {
	Driver          string        `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host            string        `yaml:"host" env:"BLUEPRINT_DB_HOST" env-default:"localhost"`
	Port            string        `yaml:"port" env:"BLUEPRINT_DB_PORT" env-default:"5432"`
	Username        string        `yaml:"username" env:"BLUEPRINT_DB_USERNAME"`
	Password        string        `yaml:"password" env:"BLUEPRINT_DB_PASSWORD"`
	Database        string        `yaml:"database" env:"BLUEPRINT_DB_DATABASE"`
	Schema          string        `yaml:"schema" env:"BLUEPRINT_DB_SCHEMA" env-default:"public"`
	SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	SQLitePath      string        `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"todos.db"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"100"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" env:"DB_SLOW_THRESHOLD" env-default:"1s"`
}

// DSN builds the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s search_path=%s",
		c.Host, c.Username, c.Password, c.Database, c.Port, c.SSLMode, c.Schema)
}

type SessionConfig struct {
	Secret     string        `yaml:"secret" env:"SESSION_SECRET" env-required:"true"`
	CookieName string        `yaml:"cookie_name" env:"SESSION_COOKIE" env-default:"access_token"`
	LoginURL   string        `yaml:"login_url" env:"SESSION_LOGIN_URL" env-default:"/auth/"`
	TTL        time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"20m"`
}

type Config struct {
	LogLevel string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	HTTP     HTTPConfig    `yaml:"http"`
	DB       DBConfig      `yaml:"db"`
	Session  SessionConfig `yaml:"session"`
}

// Load reads configPath when it exists and falls back to the environment otherwise.
// An empty configPath reads the environment only.
func Load(configPath string) (Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return Config{}, fmt.Errorf("read config %q: %w", configPath, err)
		}
		cfg = Config{}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
	}

	return cfg, nil
}
