package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	// ConfigFileEnv names an optional YAML file with the same keys, lower-cased.
	ConfigFileEnv = "CATALOG_CONFIG"
)

type Config struct {
	HTTPAddr        string
	DataFile        string
	AppEnv          string
	LogLevel        string
	LogFormat       string
	CORSOrigins     []string
	MetricsEnabled  bool
	ShutdownTimeout time.Duration

	// client side
	BaseURL       string
	ClientTimeout time.Duration
}

func (c Config) Development() bool { return c.AppEnv == EnvDevelopment }

func defaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":3001")
	v.SetDefault("data_file", "data/items.json")
	v.SetDefault("app_env", EnvProduction)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("catalog_base_url", "http://localhost:3001")
	v.SetDefault("client_timeout", "10s")
}

// Load resolves configuration from defaults, then the optional file named by
// CATALOG_CONFIG, then the environment (a .env file is loaded first if present).
func Load() (Config, error) {
	_ = godotenv.Load() // load .env if it exists

	v := viper.New()
	defaults(v)
	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	v.AutomaticEnv()

	cfg := Config{
		HTTPAddr:        v.GetString("http_addr"),
		DataFile:        v.GetString("data_file"),
		AppEnv:          strings.ToLower(v.GetString("app_env")),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		CORSOrigins:     splitList(v.GetString("cors_origins")),
		MetricsEnabled:  v.GetBool("metrics_enabled"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		BaseURL:         strings.TrimRight(v.GetString("catalog_base_url"), "/"),
		ClientTimeout:   v.GetDuration("client_timeout"),
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %q", v.GetString("shutdown_timeout"))
	}
	return cfg, nil
}

// Fields is what the server logs at startup, one field per resolved key.
func (c Config) Fields() []zap.Field {
	return []zap.Field{
		zap.String("HTTP_ADDR", c.HTTPAddr),
		zap.String("DATA_FILE", c.DataFile),
		zap.String("APP_ENV", c.AppEnv),
		zap.String("LOG_LEVEL", c.LogLevel),
		zap.Strings("CORS_ORIGINS", c.CORSOrigins),
		zap.Bool("METRICS_ENABLED", c.MetricsEnabled),
		zap.Duration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
