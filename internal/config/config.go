package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/pressroom/internal/cache/redis"
	"github.com/davidbz/pressroom/internal/interview"
	"github.com/davidbz/pressroom/internal/observability"
	"github.com/davidbz/pressroom/internal/preferences"
	"github.com/davidbz/pressroom/internal/prompts"
	"github.com/davidbz/pressroom/internal/provider/openai"
	"github.com/davidbz/pressroom/internal/provider/scripted"
)

// EnvDevelopment enables prompt file updates and detailed error responses.
const EnvDevelopment = "development"

// Config represents the service configuration.
type Config struct {
	App         AppConfig
	Server      ServerConfig
	CORS        CORSConfig
	Log         observability.LogConfig
	LLM         LLMConfig
	OpenAI      openai.Config
	Scripted    scripted.Config
	Pipeline    interview.Config
	Prompts     prompts.Config
	Preferences preferences.Config
	Redis       redis.Config
}

// AppConfig contains deployment mode settings.
type AppConfig struct {
	Env string `env:"APP_ENV" envDefault:"production"`
}

// IsDevelopment reports whether the service runs in development mode.
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"180"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization,X-Client-Id,X-Request-Id"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// LLMConfig selects the invoker.
type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"openai"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out

	App         *AppConfig
	Server      *ServerConfig
	CORS        *CORSConfig
	Log         *observability.LogConfig
	LLM         *LLMConfig
	OpenAI      *openai.Config
	Scripted    *scripted.Config
	Pipeline    *interview.Config
	Prompts     *prompts.Config
	Preferences *preferences.Config
	Redis       *redis.Config
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		App:         &cfg.App,
		Server:      &cfg.Server,
		CORS:        &cfg.CORS,
		Log:         &cfg.Log,
		LLM:         &cfg.LLM,
		OpenAI:      &cfg.OpenAI,
		Scripted:    &cfg.Scripted,
		Pipeline:    &cfg.Pipeline,
		Prompts:     &cfg.Prompts,
		Preferences: &cfg.Preferences,
		Redis:       &cfg.Redis,
	}
}
