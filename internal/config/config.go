package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/avazquez/docquery/pkg/chunk"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	LLM        LLMConfig
	Chunking   ChunkingConfig
	Similarity SimilarityConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	// JWTSecret empty disables bearer-token auth on /api/v1.
	JWTSecret string
}

type LLMConfig struct {
	OpenAIKey        string
	AnthropicKey     string
	DefaultProvider  string
	DefaultModel     string
	EmbeddingModel   string
	FallbackProvider string
	MaxRetries       int
	Temperature      float64
	MaxTokens        int
	TopK             int
}

type ChunkingConfig struct {
	MaxChunkSize       int
	MinChunkSize       int
	OverlapSize        int
	StructuredMaxSize  int
	TitleMaxLength     int
	TailMergeTolerance float64
	// MaxDocumentLength bounds ingestion input; 0 means unlimited.
	MaxDocumentLength int
}

// SimilarityConfig holds the score cutoffs used to label search results.
type SimilarityConfig struct {
	High     float64
	Moderate float64
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxRetries, err := getEnvInt("LLM_MAX_RETRIES", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %w", err)
	}

	maxTokens, err := getEnvInt("LLM_MAX_TOKENS", 1024)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_TOKENS: %w", err)
	}

	topK, err := getEnvInt("LLM_TOP_K", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TOP_K: %w", err)
	}

	temperature, err := getEnvFloat("LLM_TEMPERATURE", 0.0)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
	}

	chunking, err := loadChunking()
	if err != nil {
		return nil, err
	}

	simHigh, err := getEnvFloat("SIMILARITY_HIGH", 0.7)
	if err != nil {
		return nil, fmt.Errorf("invalid SIMILARITY_HIGH: %w", err)
	}

	simModerate, err := getEnvFloat("SIMILARITY_MODERATE", 0.4)
	if err != nil {
		return nil, fmt.Errorf("invalid SIMILARITY_MODERATE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		LLM: LLMConfig{
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "anthropic"),
			DefaultModel:     getEnv("LLM_DEFAULT_MODEL", "claude-3-haiku-20240307"),
			EmbeddingModel:   getEnv("LLM_EMBEDDING_MODEL", "text-embedding-3-small"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			MaxRetries:       maxRetries,
			Temperature:      temperature,
			MaxTokens:        maxTokens,
			TopK:             topK,
		},
		Chunking: chunking,
		Similarity: SimilarityConfig{
			High:     simHigh,
			Moderate: simModerate,
		},
	}

	return cfg, nil
}

func loadChunking() (ChunkingConfig, error) {
	defaults := chunk.DefaultConfig()

	maxSize, err := getEnvInt("CHUNK_MAX_SIZE", defaults.MaxChunkSize)
	if err != nil {
		return ChunkingConfig{}, fmt.Errorf("invalid CHUNK_MAX_SIZE: %w", err)
	}
	minSize, err := getEnvInt("CHUNK_MIN_SIZE", defaults.MinChunkSize)
	if err != nil {
		return ChunkingConfig{}, fmt.Errorf("invalid CHUNK_MIN_SIZE: %w", err)
	}
	overlap, err := getEnvInt("CHUNK_OVERLAP_SIZE", defaults.OverlapSize)
	if err != nil {
		return ChunkingConfig{}, fmt.Errorf("invalid CHUNK_OVERLAP_SIZE: %w", err)
	}
	structured, err := getEnvInt("CHUNK_STRUCTURED_MAX_SIZE", defaults.StructuredMaxSize)
	if err != nil {
		return ChunkingConfig{}, fmt.Errorf("invalid CHUNK_STRUCTURED_MAX_SIZE: %w", err)
	}
	titleMax, err := getEnvInt("CHUNK_TITLE_MAX_LENGTH", defaults.TitleMaxLength)
	if err != nil {
		return ChunkingConfig{}, fmt.Errorf("invalid CHUNK_TITLE_MAX_LENGTH: %w", err)
	}
	tolerance, err := getEnvFloat("CHUNK_TAIL_MERGE_TOLERANCE", defaults.TailMergeTolerance)
	if err != nil {
		return ChunkingConfig{}, fmt.Errorf("invalid CHUNK_TAIL_MERGE_TOLERANCE: %w", err)
	}
	maxDocLen, err := getEnvInt("MAX_DOCUMENT_LENGTH", 2_000_000)
	if err != nil {
		return ChunkingConfig{}, fmt.Errorf("invalid MAX_DOCUMENT_LENGTH: %w", err)
	}

	return ChunkingConfig{
		MaxChunkSize:       maxSize,
		MinChunkSize:       minSize,
		OverlapSize:        overlap,
		StructuredMaxSize:  structured,
		TitleMaxLength:     titleMax,
		TailMergeTolerance: tolerance,
		MaxDocumentLength:  maxDocLen,
	}, nil
}

// ChunkConfig converts the env-level chunking section into the engine's
// config type, which validates itself on use.
func (c ChunkingConfig) ChunkConfig() chunk.Config {
	return chunk.Config{
		MaxChunkSize:       c.MaxChunkSize,
		MinChunkSize:       c.MinChunkSize,
		OverlapSize:        c.OverlapSize,
		StructuredMaxSize:  c.StructuredMaxSize,
		TitleMaxLength:     c.TitleMaxLength,
		TailMergeTolerance: c.TailMergeTolerance,
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.LLM.AnthropicKey == "" && c.LLM.OpenAIKey == "" {
		missing = append(missing, "ANTHROPIC_API_KEY or OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if err := c.Chunking.ChunkConfig().Validate(); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}
