// Package config loads service configuration from environment variables,
// with optional .env file support for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Store     StoreConfig
	Provider  ProviderConfig
	Knowledge KnowledgeConfig
	Search    SearchConfig
	Limits    LimitsConfig
	Budget    BudgetConfig
	Cache     CacheConfig
}

type StoreConfig struct {
	URL       string
	OpTimeout time.Duration
}

type ProviderConfig struct {
	Host           string
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	EmbeddingDim   int
	LLMTimeout     time.Duration
	MaxTokens      int
}

type KnowledgeConfig struct {
	Path      string
	IndexPath string
}

type SearchConfig struct {
	Threshold     float64
	MaxResults    int
	VectorWeight  float64
	LexicalWeight float64
}

type LimitsConfig struct {
	PerMinute         int
	PerDay            int
	GlobalPerMinute   int
	MaxQuestionLength int
	MaxEmoji          int
}

type BudgetConfig struct {
	DailyCap   float64
	InputRate  float64
	OutputRate float64
}

type CacheConfig struct {
	GroundedTTL   time.Duration
	UngroundedTTL time.Duration
}

// Load reads configuration from the environment. A .env file in the current
// directory or a parent is applied first when present; absence is fine, the
// process environment alone works for container deployments.
func Load() (*Config, error) {
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	return &Config{
		Store: StoreConfig{
			URL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
			OpTimeout: getEnvDuration("STORE_OP_TIMEOUT_SECONDS", 2*time.Second),
		},
		Provider: ProviderConfig{
			Host:           getEnv("OPENAI_HOST", ""),
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			ChatModel:      getEnv("CHAT_MODEL", "gpt-4o-mini"),
			EmbeddingDim:   getEnvInt("EMBEDDING_DIM", 1536),
			LLMTimeout:     getEnvDuration("LLM_TIMEOUT_SECONDS", 30*time.Second),
			MaxTokens:      getEnvInt("LLM_MAX_TOKENS", 500),
		},
		Knowledge: KnowledgeConfig{
			Path:      getEnv("KNOWLEDGE_PATH", "data/knowledge.json"),
			IndexPath: getEnv("INDEX_PATH", "data/index.vec"),
		},
		Search: SearchConfig{
			Threshold:     getEnvFloat("SCORE_THRESHOLD", 0.7),
			MaxResults:    getEnvInt("MAX_RESULTS", 3),
			VectorWeight:  getEnvFloat("VECTOR_WEIGHT", 0.7),
			LexicalWeight: getEnvFloat("LEXICAL_WEIGHT", 0.3),
		},
		Limits: LimitsConfig{
			PerMinute:         getEnvInt("RATE_LIMIT_PER_MINUTE", 20),
			PerDay:            getEnvInt("RATE_LIMIT_PER_DAY", 100),
			GlobalPerMinute:   getEnvInt("RATE_LIMIT_GLOBAL_PER_MINUTE", 200),
			MaxQuestionLength: getEnvInt("MAX_QUESTION_LENGTH", 200),
			MaxEmoji:          getEnvInt("MAX_EMOJI", 3),
		},
		Budget: BudgetConfig{
			DailyCap:   getEnvFloat("DAILY_BUDGET_USD", 10.0),
			InputRate:  getEnvFloat("INPUT_TOKEN_RATE", 0.15),
			OutputRate: getEnvFloat("OUTPUT_TOKEN_RATE", 0.60),
		},
		Cache: CacheConfig{
			GroundedTTL:   getEnvDuration("CACHE_TTL_SECONDS", time.Hour),
			UngroundedTTL: getEnvDuration("FREECHAT_CACHE_TTL_SECONDS", 5*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
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
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return defaultValue
}
