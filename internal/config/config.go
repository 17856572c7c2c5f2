package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	LLM       LLMConfig
	STT       STTConfig
	Audio     AudioConfig
	Metrics   MetricsConfig
	Translate TranslateConfig
	Pipeline  PipelineConfig
}

type ServerConfig struct {
	Host           string   `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port           int      `env:"SERVER_PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL"`
	MaxConns int    `env:"DB_MAX_CONNS" envDefault:"20"`
	MinConns int    `env:"DB_MIN_CONNS" envDefault:"2"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type LLMConfig struct {
	OpenAIKey        string `env:"OPENAI_API_KEY"`
	AnthropicKey     string `env:"ANTHROPIC_API_KEY"`
	OllamaURL        string `env:"OLLAMA_URL"`
	DefaultProvider  string `env:"LLM_DEFAULT_PROVIDER" envDefault:"openai"`
	DefaultModel     string `env:"LLM_DEFAULT_MODEL" envDefault:"gpt-3.5-turbo"`
	FallbackProvider string `env:"LLM_FALLBACK_PROVIDER"`
	FallbackModel    string `env:"LLM_FALLBACK_MODEL"`
	MaxRetries       int    `env:"LLM_MAX_RETRIES" envDefault:"2"`
}

type STTConfig struct {
	Backend       string `env:"STT_BACKEND" envDefault:"openai"` // "openai" or "local"
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"STT_OPENAI_BASE_URL"`
	OpenAIModel   string `env:"STT_OPENAI_MODEL" envDefault:"whisper-1"`
	LocalBaseURL  string `env:"STT_LOCAL_BASE_URL" envDefault:"http://localhost:8178"`
	Language      string `env:"STT_LANGUAGE"`
}

type AudioConfig struct {
	FFmpegPath     string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	TempDir        string `env:"AUDIO_TEMP_DIR"` // empty means os.TempDir()
	SampleRate     int    `env:"AUDIO_SAMPLE_RATE" envDefault:"16000"`
	MaxUploadBytes int64  `env:"AUDIO_MAX_UPLOAD_BYTES" envDefault:"26214400"`
}

type MetricsConfig struct {
	Fillers []string `env:"METRICS_FILLERS" envSeparator:","`
}

type TranslateConfig struct {
	Backend           string        `env:"TRANSLATE_BACKEND" envDefault:"llm"` // "llm" or "libretranslate"
	DefaultTarget     string        `env:"TRANSLATE_DEFAULT_TARGET" envDefault:"en"`
	LibreTranslateURL string        `env:"LIBRETRANSLATE_URL" envDefault:"http://localhost:5000"`
	LibreTranslateKey string        `env:"LIBRETRANSLATE_API_KEY"`
	CacheTTL          time.Duration `env:"TRANSLATE_CACHE_TTL" envDefault:"24h"`
}

type PipelineConfig struct {
	CapabilityTimeout time.Duration `env:"CAPABILITY_TIMEOUT" envDefault:"60s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var problems []string
	switch c.STT.Backend {
	case "openai", "local":
	default:
		problems = append(problems, fmt.Sprintf("STT_BACKEND must be openai or local, got %q", c.STT.Backend))
	}
	switch c.Translate.Backend {
	case "llm", "libretranslate":
	default:
		problems = append(problems, fmt.Sprintf("TRANSLATE_BACKEND must be llm or libretranslate, got %q", c.Translate.Backend))
	}
	if c.Audio.SampleRate <= 0 {
		problems = append(problems, "AUDIO_SAMPLE_RATE must be positive")
	}
	if c.Audio.MaxUploadBytes <= 0 {
		problems = append(problems, "AUDIO_MAX_UPLOAD_BYTES must be positive")
	}
	if c.Pipeline.CapabilityTimeout <= 0 {
		problems = append(problems, "CAPABILITY_TIMEOUT must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
