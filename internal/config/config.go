package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config centralizes runtime settings for the API and worker processes.
// Values come from the environment; .env files are loaded first and never
// override variables already present in the process environment.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	AuthToken          string   `env:"API_AUTH_TOKEN"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	Stream           string `env:"ANALYSIS_STREAM" envDefault:"code_analysis"`
	DLQStream        string `env:"ANALYSIS_DLQ_STREAM" envDefault:"code_analysis_dlq"`
	Group            string `env:"ANALYSIS_GROUP" envDefault:"analysis_workers"`
	Consumer         string `env:"ANALYSIS_CONSUMER" envDefault:"worker-1"`
	ReclaimIdleMS    int    `env:"ANALYSIS_RECLAIM_IDLE_MS" envDefault:"60000"`
	ResultTTLSeconds int    `env:"RESULT_TTL_SECONDS" envDefault:"3600"`

	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	GeminiBaseURL    string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiModel      string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	GeminiTimeoutMS  int    `env:"GEMINI_TIMEOUT_MS" envDefault:"30000"`
	GeminiMaxRetries int    `env:"GEMINI_MAX_RETRIES" envDefault:"2"`

	AnalyzeTimeoutMS int `env:"ANALYZE_TIMEOUT_MS" envDefault:"60000"`

	WorkerEnabled bool `env:"WORKER_ENABLED" envDefault:"true"`
}

// Load reads optional .env files and parses the environment into a Config.
func Load(dotenvPaths ...string) (Config, error) {
	for _, path := range dotenvPaths {
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// Sanitize applies guardrails to values loaded from the environment,
// clamping non-positive settings back to their defaults.
func (c *Config) Sanitize() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.RateLimitRPS <= 0 {
		c.RateLimitRPS = 20
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = 40
	}
	if c.Stream == "" {
		c.Stream = "code_analysis"
	}
	if c.DLQStream == "" {
		c.DLQStream = "code_analysis_dlq"
	}
	if c.Group == "" {
		c.Group = "analysis_workers"
	}
	if c.Consumer == "" {
		c.Consumer = "worker-1"
	}
	if c.ReclaimIdleMS <= 0 {
		c.ReclaimIdleMS = 60000
	}
	if c.ResultTTLSeconds <= 0 {
		c.ResultTTLSeconds = 3600
	}
	if c.GeminiTimeoutMS <= 0 {
		c.GeminiTimeoutMS = 30000
	}
	if c.GeminiMaxRetries < 0 {
		c.GeminiMaxRetries = 0
	}
	if c.AnalyzeTimeoutMS <= 0 {
		c.AnalyzeTimeoutMS = 60000
	}
}
