package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration, loaded once at startup.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Remote    RemoteConfig
	Embedding EmbeddingConfig
	Scoring   ScoringConfig
	Logger    LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Path string // sqlite database file
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// RemoteConfig configures the remote (Gemini) grading strategy. An empty
// APIKey is not an error: it selects the local-only mode.
type RemoteConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// EmbeddingConfig configures the semantic similarity backend.
// Source is "ollama", "openai" or "none"; "none" selects the lexical fallback.
type EmbeddingConfig struct {
	Source              string
	SimilarityThreshold float64 // answer-cache reuse threshold
	Ollama              OllamaConfig
	OpenAI              OpenAIConfig
}

type OllamaConfig struct {
	ServerURL string
	Model     string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

// ScoringConfig exposes the grading policy constants as tunables. Zero
// values fall back to the documented defaults in the scoring package.
type ScoringConfig struct {
	SimilarityWeight  float64
	CoverageWeight    float64
	PartialCredit     float64
	PenaltyPerConcept float64
	PassThreshold     float64
	TokenOverlapMin   float64
	SemanticMin       float64
	ForbiddenSemantic float64
}

type LoggerConfig struct {
	Level string
	Env   string
}

// LoadConfig reads config.yaml plus environment overrides.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	// Defaults keep the service runnable with no config file at all:
	// local sqlite store, local-only grading, lexical similarity.
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("db.path", "gradekit.db")
	viper.SetDefault("remote.model", "gemini-1.5-flash")
	viper.SetDefault("remote.timeout", 20)
	viper.SetDefault("embedding.source", "none")
	viper.SetDefault("embedding.similarity_threshold", 0.9)
	viper.SetDefault("scoring.similarity_weight", 0.4)
	viper.SetDefault("scoring.coverage_weight", 0.6)
	viper.SetDefault("scoring.partial_credit", 0.5)
	viper.SetDefault("scoring.penalty_per_concept", 0.10)
	viper.SetDefault("scoring.pass_threshold", 0.6)
	viper.SetDefault("scoring.token_overlap_min", 0.7)
	viper.SetDefault("scoring.semantic_min", 0.75)
	viper.SetDefault("scoring.forbidden_semantic_min", 0.85)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		Database: DatabaseConfig{
			Path: viper.GetString("db.path"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Remote: RemoteConfig{
			APIKey:  viper.GetString("remote.api_key"),
			Model:   viper.GetString("remote.model"),
			Timeout: viper.GetDuration("remote.timeout") * time.Second,
		},
		Embedding: EmbeddingConfig{
			Source:              viper.GetString("embedding.source"),
			SimilarityThreshold: viper.GetFloat64("embedding.similarity_threshold"),
			Ollama: OllamaConfig{
				ServerURL: viper.GetString("embedding.ollama.server_url"),
				Model:     viper.GetString("embedding.ollama.model"),
			},
			OpenAI: OpenAIConfig{
				APIKey: viper.GetString("embedding.openai.api_key"),
				Model:  viper.GetString("embedding.openai.model"),
			},
		},
		Scoring: ScoringConfig{
			SimilarityWeight:  viper.GetFloat64("scoring.similarity_weight"),
			CoverageWeight:    viper.GetFloat64("scoring.coverage_weight"),
			PartialCredit:     viper.GetFloat64("scoring.partial_credit"),
			PenaltyPerConcept: viper.GetFloat64("scoring.penalty_per_concept"),
			PassThreshold:     viper.GetFloat64("scoring.pass_threshold"),
			TokenOverlapMin:   viper.GetFloat64("scoring.token_overlap_min"),
			SemanticMin:       viper.GetFloat64("scoring.semantic_min"),
			ForbiddenSemantic: viper.GetFloat64("scoring.forbidden_semantic_min"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
	}

	// Environment variables win over the file for the secrets.
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		config.Remote.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.Embedding.OpenAI.APIKey = key
	}
	if addr := os.Getenv("REDIS_ADDRESS"); addr != "" {
		config.Redis.Address = addr
	}
	if path := os.Getenv("DB_PATH"); path != "" {
		config.Database.Path = path
	}

	return config, nil
}

// RemoteConfigured reports whether the remote grading strategy can be
// attempted at all. Its absence selects LOCAL_ONLY, it is never fatal.
func (c *Config) RemoteConfigured() bool {
	return c.Remote.APIKey != ""
}

// RedisConfigured reports whether the answer cache can be enabled.
func (c *Config) RedisConfigured() bool {
	return c.Redis.Address != ""
}
