// Package config loads the service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	claimstore "github.com/sweetpotato0/ai-claims/claims/store"
	memberstore "github.com/sweetpotato0/ai-claims/member/store"
	sessionstore "github.com/sweetpotato0/ai-claims/session/store"
)

// Backend names accepted by the *_STORE variables.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreRedis    = "redis"
)

// LLM provider names accepted by LLM_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
)

// DefaultAzureAPIVersion is used when AZURE_OPENAI_API_VERSION is unset.
const DefaultAzureAPIVersion = "2023-05-15"

// Config is the full service configuration.
type Config struct {
	Port int

	ClaimStore   string
	MemberStore  string
	SessionStore string

	Postgres *claimstore.PostgresConfig
	Mongo    *memberstore.MongoConfig
	Redis    *sessionstore.RedisConfig

	LLM   LLMConfig
	Agent AgentConfig

	// MCPEndpoint, when set, makes the assistant call the claim tools of a
	// remote claims-mcp server instead of the in-process tool set.
	MCPEndpoint string
}

// LLMConfig selects and authenticates the language model.
type LLMConfig struct {
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int

	OpenAIAPIKey  string
	OpenAIBaseURL string

	AzureAPIKey     string
	AzureEndpoint   string
	AzureDeployment string
	AzureAPIVersion string

	AnthropicAPIKey string
	GeminiAPIKey    string
}

// UsesAzure reports whether the OpenAI provider should talk to Azure OpenAI.
func (c LLMConfig) UsesAzure() bool {
	return c.Provider == ProviderOpenAI && c.AzureEndpoint != ""
}

// AgentConfig bounds the conversational agent.
type AgentConfig struct {
	MaxIterations int
	QueryTimeout  time.Duration
	RateLimit     int
	RateWindow    time.Duration
}

// Load reads the given .env files (".env" when none are named), then builds
// the configuration from the environment. Missing files are ignored and
// variables already set in the environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds the configuration from environment variables, using the
// local development defaults for anything unset. It does not validate.
func FromEnv() *Config {
	pg := claimstore.DefaultPostgresConfig()
	mongo := memberstore.DefaultMongoConfig()
	redis := sessionstore.DefaultRedisConfig()

	return &Config{
		Port:         getEnvInt("PORT", 8000),
		ClaimStore:   strings.ToLower(getEnv("CLAIMS_STORE", StorePostgres)),
		MemberStore:  strings.ToLower(getEnv("MEMBER_STORE", StoreMongo)),
		SessionStore: strings.ToLower(getEnv("SESSION_STORE", StoreMemory)),
		Postgres: &claimstore.PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", pg.Host),
			Port:     getEnvInt("POSTGRES_PORT", pg.Port),
			User:     getEnv("POSTGRES_USER", pg.User),
			Password: getEnv("POSTGRES_PASSWORD", pg.Password),
			DBName:   getEnv("POSTGRES_DB", pg.DBName),
			SSLMode:  getEnv("POSTGRES_SSLMODE", pg.SSLMode),
		},
		Mongo: &memberstore.MongoConfig{
			URI:        getEnv("MONGODB_URI", mongo.URI),
			Database:   getEnv("MONGODB_DB", mongo.Database),
			Collection: getEnv("MONGODB_COLLECTION", mongo.Collection),
		},
		Redis: &sessionstore.RedisConfig{
			Addr:     getEnv("REDIS_ADDR", redis.Addr),
			Password: getEnv("REDIS_PASSWORD", redis.Password),
			DB:       getEnvInt("REDIS_DB", redis.DB),
			Prefix:   getEnv("REDIS_PREFIX", redis.Prefix),
			TTL:      getEnvDuration("REDIS_TTL", redis.TTL),
		},
		LLM: LLMConfig{
			Provider:        strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
			Model:           os.Getenv("LLM_MODEL"),
			Temperature:     getEnvFloat("LLM_TEMPERATURE", 0),
			MaxTokens:       getEnvInt("LLM_MAX_TOKENS", 4096),
			OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL:   os.Getenv("OPENAI_API_BASE_URL"),
			AzureAPIKey:     os.Getenv("AZURE_OPENAI_API_KEY"),
			AzureEndpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
			AzureDeployment: os.Getenv("AZURE_OPENAI_DEPLOYMENT"),
			AzureAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", DefaultAzureAPIVersion),
			AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
			GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		},
		Agent: AgentConfig{
			MaxIterations: getEnvInt("AGENT_MAX_ITERATIONS", 10),
			QueryTimeout:  getEnvDuration("QUERY_TIMEOUT", 2*time.Minute),
			RateLimit:     getEnvInt("QUERY_RATE_LIMIT", 0),
			RateWindow:    getEnvDuration("QUERY_RATE_WINDOW", time.Minute),
		},
		MCPEndpoint: os.Getenv("CLAIMS_MCP_ENDPOINT"),
	}
}

// Validate checks the store selection and the settings of the selected
// backends. LLM credentials are checked separately by LLMConfig.Validate,
// since not every binary talks to a model.
func (c *Config) Validate() error {
	v := NewValidator()
	v.ValidatePort("PORT", c.Port)
	v.ValidateOneOf("CLAIMS_STORE", c.ClaimStore, StorePostgres, StoreMemory)
	v.ValidateOneOf("MEMBER_STORE", c.MemberStore, StoreMongo, StoreMemory)
	v.ValidateOneOf("SESSION_STORE", c.SessionStore, StoreRedis, StoreMemory)
	v.RequirePositive("AGENT_MAX_ITERATIONS", c.Agent.MaxIterations)
	v.RequireNonNegative("QUERY_RATE_LIMIT", c.Agent.RateLimit)

	if c.ClaimStore == StorePostgres {
		v.Merge(ValidatePostgresConfig(c.Postgres))
	}
	if c.MemberStore == StoreMongo {
		v.Merge(ValidateMongoDBConfig(c.Mongo))
	}
	if c.SessionStore == StoreRedis {
		v.Merge(ValidateRedisConfig(c.Redis))
	}
	return v.Error()
}

// Validate requires the credentials of the selected provider. An OpenAI
// provider is satisfied by either OPENAI_API_KEY or the Azure settings.
func (c LLMConfig) Validate() error {
	v := NewValidator()
	v.ValidateOneOf("LLM_PROVIDER", c.Provider, ProviderOpenAI, ProviderClaude, ProviderGemini)
	v.ValidateFloatRange("LLM_TEMPERATURE", c.Temperature, 0, 2)
	v.RequirePositive("LLM_MAX_TOKENS", c.MaxTokens)

	switch c.Provider {
	case ProviderOpenAI:
		if c.AzureEndpoint != "" {
			v.RequireNonEmpty("AZURE_OPENAI_API_KEY", c.AzureAPIKey)
			v.RequireNonEmpty("AZURE_OPENAI_DEPLOYMENT", c.AzureDeployment)
		} else {
			v.RequireNonEmpty("OPENAI_API_KEY", c.OpenAIAPIKey)
		}
	case ProviderClaude:
		v.RequireNonEmpty("ANTHROPIC_API_KEY", c.AnthropicAPIKey)
	case ProviderGemini:
		v.RequireNonEmpty("GEMINI_API_KEY", c.GeminiAPIKey)
	}
	return v.Error()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
