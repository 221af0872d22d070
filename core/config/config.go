package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultHealthPort is used when PORT is not set.
	DefaultHealthPort = 10000
	// DefaultHealthHost binds the health endpoint to all interfaces.
	DefaultHealthHost = "0.0.0.0"
	// DefaultWeatherURL is the OpenWeatherMap API root.
	DefaultWeatherURL = "https://api.openweathermap.org"
	// DefaultWeatherUnits requests temperatures in Celsius.
	DefaultWeatherUnits = "metric"
	// DefaultWeatherLang requests Russian descriptions.
	DefaultWeatherLang = "ru"
	// DefaultWeatherTimeout bounds a single weather call.
	DefaultWeatherTimeout = 10 * time.Second
	// DefaultLongPollTimeoutSeconds is the getUpdates long-poll window.
	DefaultLongPollTimeoutSeconds = 10
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token string `yaml:"token" envconfig:"TG_KEY"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WeatherConfig configures the OpenWeatherMap client.
type WeatherConfig struct {
	APIKey         string `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL        string `yaml:"base_url" envconfig:"WEATHER_API_URL"`
	Units          string `yaml:"units" envconfig:"WEATHER_UNITS"`
	Lang           string `yaml:"lang" envconfig:"WEATHER_LANG"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"WEATHER_TIMEOUT_SECONDS"`
	// Timezone is an IANA zone used to format the sunset time; empty means process local time.
	Timezone string `yaml:"timezone" envconfig:"WEATHER_TZ"`
}

// HealthConfig specifies the liveness endpoint listener.
type HealthConfig struct {
	Host string `yaml:"host" envconfig:"HEALTH_HOST"`
	Port int    `yaml:"port" envconfig:"PORT"`
}

// MetricsConfig specifies the optional prometheus listener. Port 0 disables it.
type MetricsConfig struct {
	Host string `yaml:"host" envconfig:"METRICS_HOST"`
	Port int    `yaml:"port" envconfig:"METRICS_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample" envconfig:"LOG_DEBUG_SAMPLE"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	BotFile     string `yaml:"bot_file" envconfig:"LOG_FILE"`
	// Quiet lists components clamped to WARN; empty -> telebot, http.client
	Quiet []string `yaml:"quiet" envconfig:"LOG_QUIET"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// Config aggregates the whole application configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Weather  WeatherConfig  `yaml:"weather"`
	Health   HealthConfig   `yaml:"health"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DefaultQuietComponents are the third-party log sources that may echo secrets at debug level.
var DefaultQuietComponents = []string{"telebot", "http.client"}

// Load reads an optional .env file, an optional YAML file and the process environment.
// Environment values override YAML values. An empty path skips the YAML step.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required secrets and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	var errs []error
	cfg.Weather.APIKey = strings.TrimSpace(cfg.Weather.APIKey)
	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
	if cfg.Weather.APIKey == "" {
		errs = append(errs, fmt.Errorf("API_KEY is not set in the environment (.env)"))
	}
	if cfg.Telegram.Token == "" {
		errs = append(errs, fmt.Errorf("TG_KEY is not set in the environment (.env)"))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if cfg.Telegram.LongPollTimeoutSeconds < 0 {
		return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
	}
	if cfg.Telegram.LongPollTimeoutSeconds == 0 {
		cfg.Telegram.LongPollTimeoutSeconds = DefaultLongPollTimeoutSeconds
	}

	if strings.TrimSpace(cfg.Weather.BaseURL) == "" {
		cfg.Weather.BaseURL = DefaultWeatherURL
	}
	cfg.Weather.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Weather.BaseURL), "/")
	if strings.TrimSpace(cfg.Weather.Units) == "" {
		cfg.Weather.Units = DefaultWeatherUnits
	}
	if strings.TrimSpace(cfg.Weather.Lang) == "" {
		cfg.Weather.Lang = DefaultWeatherLang
	}
	if cfg.Weather.TimeoutSeconds < 0 {
		return fmt.Errorf("weather.timeout_seconds must be >= 0")
	}
	if tz := strings.TrimSpace(cfg.Weather.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid weather.timezone %q: %w", tz, err)
		}
	}

	if strings.TrimSpace(cfg.Health.Host) == "" {
		cfg.Health.Host = DefaultHealthHost
	}
	if cfg.Health.Port == 0 {
		cfg.Health.Port = DefaultHealthPort
	}
	if cfg.Health.Port < 0 || cfg.Health.Port > 65535 {
		return fmt.Errorf("invalid health port %d", cfg.Health.Port)
	}

	if cfg.Metrics.Port < 0 || cfg.Metrics.Port > 65535 {
		return fmt.Errorf("invalid metrics port %d", cfg.Metrics.Port)
	}
	if cfg.Metrics.Port > 0 && cfg.Metrics.Port == cfg.Health.Port {
		return fmt.Errorf("metrics port must differ from health port %d", cfg.Health.Port)
	}
	if strings.TrimSpace(cfg.Metrics.Host) == "" {
		cfg.Metrics.Host = DefaultHealthHost
	}

	if len(cfg.Logging.Quiet) == 0 {
		cfg.Logging.Quiet = append([]string(nil), DefaultQuietComponents...)
	}
	for i, c := range cfg.Logging.Quiet {
		cfg.Logging.Quiet[i] = strings.ToLower(strings.TrimSpace(c))
	}
	return nil
}

// WeatherTimeout returns the configured weather call timeout.
func (c *Config) WeatherTimeout() time.Duration {
	if c == nil || c.Weather.TimeoutSeconds <= 0 {
		return DefaultWeatherTimeout
	}
	return time.Duration(c.Weather.TimeoutSeconds) * time.Second
}

// Secrets returns the values that must never reach log output.
func (c *Config) Secrets() []string {
	if c == nil {
		return nil
	}
	return []string{c.Telegram.Token, c.Weather.APIKey}
}
