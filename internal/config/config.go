package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultWebhookURL = "https://abelosaretin.name.ng/webhook/submitQuiz"

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		LoginPath      string   `yaml:"login_path"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Identity struct {
		URL        string `yaml:"url"`
		AnonKey    string `yaml:"anon_key"`
		JWTSecret  string `yaml:"jwt_secret"`
		RedirectTo string `yaml:"redirect_to"`
		CacheTTL   string `yaml:"cache_ttl"`
	} `yaml:"identity"`
	Generator struct {
		URL     string `yaml:"url"`
		APIKey  string `yaml:"api_key"`
		Timeout string `yaml:"timeout"`
	} `yaml:"generator"`
	Webhook struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"webhook"`
	Quiz struct {
		AdvanceDelay string `yaml:"advance_delay"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path, then applies environment overrides and
// defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv lets deployment secrets live outside the YAML file.
func (c *Config) applyEnv() {
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = n
		}
	}
	setString(&c.Postgres.URL, "DATABASE_URL")
	setString(&c.Identity.URL, "IDENTITY_URL")
	setString(&c.Identity.AnonKey, "IDENTITY_ANON_KEY")
	setString(&c.Identity.JWTSecret, "IDENTITY_JWT_SECRET")
	setString(&c.Identity.RedirectTo, "IDENTITY_REDIRECT_TO")
	setString(&c.Generator.URL, "GENERATOR_URL")
	setString(&c.Generator.APIKey, "GENERATOR_API_KEY")
	setString(&c.Webhook.URL, "WEBHOOK_URL")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = parseOrigins(v)
	}
}

func (c *Config) applyDefaults() {
	if c.Server.LoginPath == "" {
		c.Server.LoginPath = "/login"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Webhook.URL == "" {
		c.Webhook.URL = DefaultWebhookURL
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func parseOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
