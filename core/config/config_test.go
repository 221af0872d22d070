package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setSecrets(t *testing.T, apiKey, token string) {
	t.Helper()
	t.Setenv("API_KEY", apiKey)
	t.Setenv("TG_KEY", token)
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadMissingSecrets(t *testing.T) {
	cases := []struct {
		name    string
		apiKey  string
		token   string
		wantErr []string
	}{
		{name: "both", wantErr: []string{"API_KEY", "TG_KEY"}},
		{name: "api key", token: "123:abc", wantErr: []string{"API_KEY"}},
		{name: "token", apiKey: "secret", wantErr: []string{"TG_KEY"}},
		{name: "blank", apiKey: "   ", token: "\t", wantErr: []string{"API_KEY", "TG_KEY"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setSecrets(t, tc.apiKey, tc.token)
			cfg, err := Load("")
			if err == nil {
				t.Fatalf("expected error, got config %+v", cfg)
			}
			for _, want := range tc.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Fatalf("error %q does not mention %s", err, want)
				}
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	setSecrets(t, "secret", "123:abc")
	unsetEnv(t, "PORT")
	unsetEnv(t, "METRICS_PORT")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Health.Port != DefaultHealthPort {
		t.Fatalf("health port = %d, want %d", cfg.Health.Port, DefaultHealthPort)
	}
	if cfg.Health.Host != DefaultHealthHost {
		t.Fatalf("health host = %q", cfg.Health.Host)
	}
	if cfg.Weather.BaseURL != DefaultWeatherURL || cfg.Weather.Units != "metric" || cfg.Weather.Lang != "ru" {
		t.Fatalf("unexpected weather defaults: %+v", cfg.Weather)
	}
	if cfg.WeatherTimeout() != DefaultWeatherTimeout {
		t.Fatalf("weather timeout = %s", cfg.WeatherTimeout())
	}
	if cfg.Telegram.LongPollTimeoutSeconds != DefaultLongPollTimeoutSeconds {
		t.Fatalf("longpoll timeout = %d", cfg.Telegram.LongPollTimeoutSeconds)
	}
	if strings.Join(cfg.Logging.Quiet, ",") != "telebot,http.client" {
		t.Fatalf("quiet components = %v", cfg.Logging.Quiet)
	}
	if cfg.Metrics.Port != 0 {
		t.Fatalf("metrics must be disabled by default, got port %d", cfg.Metrics.Port)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
telegram:
  token: from-yaml
weather:
  api_key: yaml-key
  timeout_seconds: 3
health:
  port: 8081
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "9090")
	t.Setenv("TG_KEY", "from-env")
	unsetEnv(t, "API_KEY")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("token = %q, want env value", cfg.Telegram.Token)
	}
	if cfg.Weather.APIKey != "yaml-key" {
		t.Fatalf("api key = %q, want yaml value", cfg.Weather.APIKey)
	}
	if cfg.Health.Port != 9090 {
		t.Fatalf("port = %d, want 9090", cfg.Health.Port)
	}
	if cfg.WeatherTimeout() != 3*time.Second {
		t.Fatalf("timeout = %s", cfg.WeatherTimeout())
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Logging.Level)
	}
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	base := func() *Config {
		return &Config{
			Telegram: TelegramConfig{Token: "t"},
			Weather:  WeatherConfig{APIKey: "k"},
		}
	}
	cases := map[string]func(*Config){
		"negative port":     func(c *Config) { c.Health.Port = -1 },
		"huge port":         func(c *Config) { c.Health.Port = 70000 },
		"metrics collision": func(c *Config) { c.Health.Port = 9000; c.Metrics.Port = 9000 },
		"bad timezone":      func(c *Config) { c.Weather.Timezone = "Mars/Olympus" },
		"negative timeout":  func(c *Config) { c.Weather.TimeoutSeconds = -5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(cfg)
			if err := Normalize(cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNormalizeNil(t *testing.T) {
	if err := Normalize(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestSecrets(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "tok"}, Weather: WeatherConfig{APIKey: "key"}}
	got := cfg.Secrets()
	if len(got) != 2 || got[0] != "tok" || got[1] != "key" {
		t.Fatalf("secrets = %v", got)
	}
}
