package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Meta      MetaConfig      `mapstructure:"meta"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// MetaConfig holds everything needed to talk to the Graph API and to
// authenticate inbound webhook traffic from it.
type MetaConfig struct {
	GraphBase    string        `mapstructure:"graph_base"`
	GraphVersion string        `mapstructure:"graph_version"`
	AccessToken  string        `mapstructure:"access_token"`
	AppSecret    string        `mapstructure:"app_secret"`
	VerifyToken  string        `mapstructure:"verify_token"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

type RateLimitConfig struct {
	WebhookPerMinute  int `mapstructure:"webhook_per_minute"`
	LeadFormPerMinute int `mapstructure:"lead_form_per_minute"`
}

type CORSConfig struct {
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.path", "data/leadflow.db")
	viper.SetDefault("database.max_connections", 10)
	viper.SetDefault("meta.graph_base", "https://graph.facebook.com")
	viper.SetDefault("meta.graph_version", "v20.0")
	viper.SetDefault("meta.fetch_timeout", 15*time.Second)
	viper.SetDefault("rate_limit.webhook_per_minute", 600)
	viper.SetDefault("rate_limit.lead_form_per_minute", 60)
	viper.SetDefault("cors.allowed_origin", "*")
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// validate rejects a config missing any credential the pipeline cannot run
// without. Startup must fail loudly rather than accept unsigned webhooks.
func (c *Config) validate() error {
	var missing []string
	if c.Meta.AccessToken == "" {
		missing = append(missing, "meta.access_token")
	}
	if c.Meta.AppSecret == "" {
		missing = append(missing, "meta.app_secret")
	}
	if c.Meta.VerifyToken == "" {
		missing = append(missing, "meta.verify_token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}
