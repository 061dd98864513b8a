package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	// json|console
	LogFormat   string   `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`

	MaxUploadBytes int64   `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"10485760"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS" env-default:"0"`
	RateLimitBurst int     `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST" env-default:"5"`

	Database   DatabaseConfig   `yaml:"database"`
	Translate  TranslateConfig  `yaml:"translate"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Advisor    AdvisorConfig    `yaml:"advisor"`
	Memory     MemoryConfig     `yaml:"memory"`
	KB         KBConfig         `yaml:"kb"`

	// empty disables domain events
	NATSURL string `yaml:"nats_url" env:"NATS_URL" env-default:""`
}

type DatabaseConfig struct {
	// sqlite|postgres
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	Path   string `yaml:"path" env:"DB_PATH" env-default:"krishi.db"`
	URL    string `yaml:"-" env:"DATABASE_URL"`
}

type TranslateConfig struct {
	// gateway|google
	Provider string `yaml:"provider" env:"TRANSLATE_PROVIDER" env-default:"gateway"`
	// empty means text is passed through untranslated
	URL     string        `yaml:"url" env:"TRANSLATE_URL" env-default:"http://localhost:8100"`
	Timeout time.Duration `yaml:"timeout" env:"TRANSLATE_TIMEOUT" env-default:"15s"`
	// service account JSON file for the google provider
	GoogleCredentials string `yaml:"-" env:"GOOGLE_TRANSLATE_CREDENTIALS"`
}

type ClassifierConfig struct {
	URL          string        `yaml:"url" env:"CLASSIFIER_URL" env-default:""`
	Model        string        `yaml:"model" env:"CLASSIFIER_MODEL" env-default:"linkanjarad/mobilenet_v2_1.0_224-plant-disease-identification"`
	Labels       string        `yaml:"labels" env:"CLASSIFIER_LABELS" env-default:"models/config.json"`
	Preprocessor string        `yaml:"preprocessor" env:"CLASSIFIER_PREPROCESSOR" env-default:""`
	Timeout      time.Duration `yaml:"timeout" env:"CLASSIFIER_TIMEOUT" env-default:"20s"`
	// width*height ceiling checked before pixels are decoded
	MaxPixels int `yaml:"max_pixels" env:"CLASSIFIER_MAX_PIXELS" env-default:"40000000"`
}

type AdvisorConfig struct {
	// openai|anthropic|gemini|mock
	Provider    string        `yaml:"provider" env:"ADVISOR_PROVIDER" env-default:"openai"`
	Endpoint    string        `yaml:"endpoint" env:"ADVISOR_ENDPOINT" env-default:"http://localhost:11434/v1"`
	APIKey      string        `yaml:"-" env:"ADVISOR_API_KEY"`
	Model       string        `yaml:"model" env:"ADVISOR_MODEL" env-default:"agriculture-qa-fast"`
	Temperature float32       `yaml:"temperature" env:"ADVISOR_TEMPERATURE" env-default:"0.5"`
	MaxTokens   int           `yaml:"max_tokens" env:"ADVISOR_MAX_TOKENS" env-default:"1024"`
	Timeout     time.Duration `yaml:"timeout" env:"ADVISOR_TIMEOUT" env-default:"60s"`
}

type MemoryConfig struct {
	// memory|redis
	Backend  string        `yaml:"backend" env:"CHAT_MEMORY_BACKEND" env-default:"memory"`
	MaxTurns int           `yaml:"max_turns" env:"CHAT_MEMORY_TURNS" env-default:"20"`
	TTL      time.Duration `yaml:"ttl" env:"CHAT_MEMORY_TTL" env-default:"24h"`
	RedisURL string        `yaml:"-" env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
}

type KBConfig struct {
	EmbEndpoint    string   `yaml:"emb_endpoint" env:"EMB_ENDPOINT" env-default:""`
	EmbAPIKey      string   `yaml:"-" env:"EMB_API_KEY"`
	EmbModel       string   `yaml:"emb_model" env:"EMB_MODEL" env-default:"nomic-embed-text"`
	AllowedDomains []string `yaml:"allowed_domains" env:"KB_ALLOWED_DOMAINS" env-separator:"," env-default:""`
	MaxBytes       int      `yaml:"max_bytes_per_page" env:"KB_MAX_BYTES_PER_PAGE" env-default:"1500000"`
	ContextChunks  int      `yaml:"context_chunks" env:"KB_CONTEXT_CHUNKS" env-default:"3"`
}

// Load reads .env (if any), then the optional YAML file named by CONFIG_FILE,
// then environment variables. Environment always wins.
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("[cfg] No .env file found or error loading: %v", err)
	}

	var cfg AppConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read env: %w", err)
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.Advisor.Provider = strings.ToLower(strings.TrimSpace(cfg.Advisor.Provider))
	cfg.Memory.Backend = strings.ToLower(strings.TrimSpace(cfg.Memory.Backend))
	cfg.Translate.Provider = strings.ToLower(strings.TrimSpace(cfg.Translate.Provider))
	return cfg, cfg.Validate()
}

func (c AppConfig) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Advisor.Provider {
	case "openai", "anthropic", "gemini", "mock":
	default:
		return fmt.Errorf("unsupported ADVISOR_PROVIDER %q", c.Advisor.Provider)
	}
	switch c.Memory.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported CHAT_MEMORY_BACKEND %q", c.Memory.Backend)
	}
	switch c.Translate.Provider {
	case "gateway":
	case "google":
		if c.Translate.GoogleCredentials == "" {
			return fmt.Errorf("GOOGLE_TRANSLATE_CREDENTIALS is required for the google translate provider")
		}
	default:
		return fmt.Errorf("unsupported TRANSLATE_PROVIDER %q", c.Translate.Provider)
	}
	if c.Memory.MaxTurns < 0 {
		return fmt.Errorf("CHAT_MEMORY_TURNS must be >= 0")
	}
	return nil
}

// Redacted is safe to log.
func (c AppConfig) Redacted() AppConfig {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}
	c.Database.URL = mask(c.Database.URL)
	c.Advisor.APIKey = mask(c.Advisor.APIKey)
	c.KB.EmbAPIKey = mask(c.KB.EmbAPIKey)
	c.Memory.RedisURL = mask(c.Memory.RedisURL)
	return c
}
