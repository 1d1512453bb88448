package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	GeneratorGemini = "gemini"
	GeneratorLocal  = "local"
)

const defaultRateLimit = 20

// placeholderKey is the value shipped in example configs.
const placeholderKey = "your_gemini_api_key_here"

// ErrMissingAPIKey is returned when the Gemini generator has no usable key.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY not found: set it in config.json, .env or the environment")

// Config represents the application configuration.
type Config struct {
	GeminiAPIKey   string   `json:"gemini_api_key"`
	GeminiModel    string   `json:"gemini_model"`
	DatabaseURL    string   `json:"DATABASE_URL"`
	RedisURL       string   `json:"redis_url"`
	Generator      string   `json:"generator"`
	LocalLLMURL    string   `json:"local_llm_url"`
	LocalLLMModel  string   `json:"local_llm_model"`
	AllowedOrigins []string `json:"allowed_origins"`
	Port           string   `json:"port"`
	RateLimit      *int     `json:"rate_limit"`
	ContactEmail   string   `json:"contact_email"`
}

// Load reads path (a missing file is fine), loads .env outside production and
// lets environment variables override file values.
func Load(path string) (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	var cfg Config
	configData, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(configData, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	override := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	override(&c.GeminiAPIKey, "GEMINI_API_KEY", "EXPO_PUBLIC_GEMINI_API_KEY")
	override(&c.GeminiModel, "GEMINI_MODEL")
	override(&c.DatabaseURL, "DATABASE_URL")
	override(&c.RedisURL, "REDIS_URL")
	override(&c.Generator, "GENERATOR")
	override(&c.LocalLLMURL, "LOCAL_LLM_URL")
	override(&c.LocalLLMModel, "LOCAL_LLM_MODEL")
	override(&c.Port, "PORT")
	override(&c.ContactEmail, "CONTACT_EMAIL")

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, origin)
			}
		}
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT %q: %w", v, err)
		}
		c.RateLimit = &n
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.GeminiAPIKey = strings.TrimSpace(c.GeminiAPIKey)
	if c.Generator == "" {
		c.Generator = GeneratorGemini
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"http://localhost:8081"}
	}
	if c.RateLimit == nil {
		limit := defaultRateLimit
		c.RateLimit = &limit
	}
}

// GenerationLimit is the number of generations allowed per client per hour.
// 0 disables rate limiting.
func (c *Config) GenerationLimit() int {
	if c.RateLimit == nil {
		return defaultRateLimit
	}
	return *c.RateLimit
}

// Validate reports configuration the server cannot start with.
func (c *Config) Validate() error {
	switch c.Generator {
	case GeneratorGemini:
		if c.GeminiAPIKey == "" || c.GeminiAPIKey == placeholderKey {
			return ErrMissingAPIKey
		}
	case GeneratorLocal:
	default:
		return fmt.Errorf("unknown generator %q", c.Generator)
	}
	if c.GenerationLimit() < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}
