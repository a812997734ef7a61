package ragcli

import (
	"context"
	"fmt"
	"log/slog"

	rag "github.com/yilane/rag-related"
	"github.com/yilane/rag-related/pkg/config"
	"github.com/yilane/rag-related/pkg/embedder"
	"github.com/yilane/rag-related/pkg/logger"
	"github.com/yilane/rag-related/pkg/nlp"
	"github.com/yilane/rag-related/pkg/retriever"
	"github.com/yilane/rag-related/pkg/telemetry"
	"github.com/yilane/rag-related/pkg/vectorstore"
)

// loadConfig loads configuration and builds the logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(log)
	return cfg, log, nil
}

// buildLLM constructs the chat client with retry and optional circuit
// breaking per the config.
func buildLLM(cfg *config.Config, log *slog.Logger) (nlp.Client, error) {
	nlpConfig := nlp.Config{
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
	}
	if cfg.LLM.Temperature != 0 {
		t := cfg.LLM.Temperature
		nlpConfig.Temperature = &t
	}
	if cfg.LLM.MaxTokens != 0 {
		m := cfg.LLM.MaxTokens
		nlpConfig.MaxTokens = &m
	}

	base, err := nlp.NewOpenAIClient(cfg.LLM.APIKey, nlpConfig)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}

	retryConfig := nlp.DefaultRetryConfig()
	if cfg.LLM.MaxRetries > 0 {
		retryConfig.MaxRetries = cfg.LLM.MaxRetries
	}
	var client nlp.Client = nlp.NewRetryClient(base, retryConfig)

	if cfg.CircuitBreaker.Enabled {
		client = nlp.NewCircuitBreakerClient(client, cfg.CircuitBreaker, log, "llm")
	}
	return client, nil
}

// buildEmbedder constructs the embedding client, wrapped in a badger cache
// when a cache path is configured.
func buildEmbedder(cfg *config.Config) (embedder.Client, error) {
	var (
		client embedder.Client
		err    error
	)

	embConfig := &embedder.Config{
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimension,
	}

	switch cfg.Embedding.Provider {
	case "openai":
		client, err = embedder.NewOpenAIClient(cfg.Embedding.APIKey, cfg.Embedding.BaseURL, embConfig)
	default:
		client, err = embedder.NewEmbedEverythingClient(embConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	if cfg.Embedding.CachePath != "" {
		cached, err := embedder.NewCachedClient(client, cfg.Embedding.CachePath, cfg.Embedding.Model)
		if err != nil {
			return nil, fmt.Errorf("create embedding cache: %w", err)
		}
		client = cached
	}
	return client, nil
}

// buildStore constructs the vector store named by the config.
func buildStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.VectorStore.Provider {
	case "ivf":
		return vectorstore.NewIVFStore(vectorstore.IVFConfig{
			Metric: vectorstore.MetricL2,
			NList:  cfg.VectorStore.NList,
			NProbe: cfg.VectorStore.NProbe,
		})
	case "qdrant":
		return vectorstore.NewQdrantStore(ctx, vectorstore.QdrantConfig{
			Addr:       fmt.Sprintf("%s:%d", cfg.VectorStore.Host, cfg.VectorStore.Port),
			Collection: cfg.VectorStore.Collection,
			Dimension:  cfg.Embedding.Dimension,
		})
	default:
		return vectorstore.NewFlatStore(vectorstore.MetricL2)
	}
}

// buildRAG wires the full pipeline. The hybrid flag adds a BM25 retriever
// fused with the dense one; rerank wraps the retriever in a listwise LLM
// reranker.
func buildRAG(ctx context.Context, cfg *config.Config, log *slog.Logger, hybrid, rerank bool) (*rag.Client, error) {
	llm, err := buildLLM(cfg, log)
	if err != nil {
		return nil, err
	}

	emb, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ragConfig := &rag.Config{Logger: log}

	if cfg.Telemetry.ParquetPath != "" {
		recorder, err := telemetry.NewRecorder(cfg.Telemetry.ParquetPath, 0, log)
		if err != nil {
			log.Warn("telemetry disabled", "error", err)
		} else {
			ragConfig.Telemetry = recorder
		}
	}

	if hybrid {
		bm25 := retriever.NewBM25Retriever(cfg.Retrieval.BM25K1, cfg.Retrieval.BM25B)
		dense := retriever.NewDenseRetriever(emb, store)
		ragConfig.Retriever = retriever.NewHybridRetriever(cfg.Retrieval.RRFK, bm25, dense)
	}
	if rerank {
		inner := ragConfig.Retriever
		if inner == nil {
			inner = retriever.NewDenseRetriever(emb, store)
		}
		ragConfig.Retriever = retriever.NewLLMReranker(inner, llm)
	}

	return rag.NewClient(llm, emb, store, ragConfig), nil
}
