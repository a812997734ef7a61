package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// LLM configuration
	LLM LLMConfig `mapstructure:"llm"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// VectorStore configuration
	VectorStore VectorStoreConfig `mapstructure:"vector_store"`

	// Neo4j configuration (Text-to-Cypher)
	Neo4j Neo4jConfig `mapstructure:"neo4j"`

	// NER configuration
	NER NERConfig `mapstructure:"ner"`

	// Retrieval configuration
	Retrieval RetrievalConfig `mapstructure:"retrieval"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// LLMConfig holds chat-model configuration
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"` // deepseek, openai
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	MaxRetries  int     `mapstructure:"max_retries"`
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider"` // embedeverything, openai
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Dimension int    `mapstructure:"dimension"`
	CachePath string `mapstructure:"cache_path"` // badger cache dir, empty disables caching
}

// VectorStoreConfig holds vector store configuration
type VectorStoreConfig struct {
	Provider   string `mapstructure:"provider"` // memory, ivf, qdrant
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
	// NList and NProbe apply to the IVF index.
	NList  int `mapstructure:"nlist"`
	NProbe int `mapstructure:"nprobe"`
}

// Neo4jConfig holds graph database configuration
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// NERConfig holds named entity recognition configuration
type NERConfig struct {
	ModelID string `mapstructure:"model_id"` // HuggingFace model id
	// ModelPath points at a local model directory and wins over ModelID.
	ModelPath string   `mapstructure:"model_path"`
	Labels    []string `mapstructure:"labels"`
	Threshold float64  `mapstructure:"threshold"`
}

// RetrievalConfig holds retrieval tuning parameters
type RetrievalConfig struct {
	TopK     int     `mapstructure:"top_k"`
	MinScore float64 `mapstructure:"min_score"`
	// RRFK is the rank constant for reciprocal-rank fusion.
	RRFK int `mapstructure:"rrf_k"`
	// BM25 parameters.
	BM25K1 float64 `mapstructure:"bm25_k1"`
	BM25B  float64 `mapstructure:"bm25_b"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// LLM defaults: DeepSeek through the OpenAI-compatible API
	viper.SetDefault("llm.provider", "deepseek")
	viper.SetDefault("llm.model", "deepseek-chat")
	viper.SetDefault("llm.base_url", "https://api.deepseek.com/v1")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.max_tokens", 2048)
	viper.SetDefault("llm.max_retries", 3)

	// Embedding defaults
	viper.SetDefault("embedding.provider", "embedeverything")
	viper.SetDefault("embedding.model", "BAAI/bge-small-zh-v1.5")
	viper.SetDefault("embedding.dimension", 512)

	// Vector store defaults
	viper.SetDefault("vector_store.provider", "memory")
	viper.SetDefault("vector_store.host", "localhost")
	viper.SetDefault("vector_store.port", 6334)
	viper.SetDefault("vector_store.collection", "rag_chunks")
	viper.SetDefault("vector_store.nlist", 16)
	viper.SetDefault("vector_store.nprobe", 4)

	// Neo4j defaults
	viper.SetDefault("neo4j.uri", "bolt://localhost:7687")
	viper.SetDefault("neo4j.username", "neo4j")
	viper.SetDefault("neo4j.database", "neo4j")

	// NER defaults
	viper.SetDefault("ner.model_id", "onnx-community/gliner_multi-v2.1")
	viper.SetDefault("ner.labels", []string{"疾病", "症状", "药物"})
	viper.SetDefault("ner.threshold", 0.3)

	// Retrieval defaults
	viper.SetDefault("retrieval.top_k", 5)
	viper.SetDefault("retrieval.min_score", 0.0)
	viper.SetDefault("retrieval.rrf_k", 60)
	viper.SetDefault("retrieval.bm25_k1", 1.5)
	viper.SetDefault("retrieval.bm25_b", 0.75)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 60)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.ragcli/telemetry", home))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	// API keys: DEEPSEEK_API_KEY wins for the deepseek provider, OPENAI_API_KEY
	// covers both roles otherwise.
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		if config.LLM.APIKey == "" {
			config.LLM.APIKey = apiKey
		}
		if config.Embedding.APIKey == "" {
			config.Embedding.APIKey = apiKey
		}
	}
	if apiKey := os.Getenv("DEEPSEEK_API_KEY"); apiKey != "" && config.LLM.Provider == "deepseek" {
		config.LLM.APIKey = apiKey
	}

	// Neo4j credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Neo4j.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Neo4j.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Neo4j.Password = pass
	}

	// Qdrant settings
	if host := os.Getenv("QDRANT_HOST"); host != "" {
		config.VectorStore.Host = host
	}
	if port := os.Getenv("QDRANT_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			config.VectorStore.Port = n
		}
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			config.Server.Port = n
		}
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
