package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/fanzone/fanchat-go/internal/embedder"
	"github.com/fanzone/fanchat-go/internal/rag"
	"github.com/fanzone/fanchat-go/internal/server"
)

// buildRetriever resolves the retrieval stack from environment variables and
// returns the retriever, an optional readiness probe for the search backend,
// and a close function for any held connections.
//
// Backend selection (RAG_BACKEND):
//
//	api    — the hosted content-fetcher API (requires RAG_API_URL)
//	qdrant — a Qdrant collection queried directly (requires QDRANT_HOST)
//
// When RAG_BACKEND is unset, "api" is inferred from RAG_API_URL and "qdrant"
// from QDRANT_HOST. With neither set, retrieval is disabled: the returned
// retriever is nil and every chat turn runs unaugmented.
func buildRetriever(log *slog.Logger) (*rag.Retriever, server.Pinger, func(), error) {
	noop := func() {}

	backend := os.Getenv("RAG_BACKEND")
	if backend == "" {
		switch {
		case os.Getenv("RAG_API_URL") != "":
			backend = "api"
		case os.Getenv("QDRANT_HOST") != "":
			backend = "qdrant"
		default:
			log.Warn("retrieval disabled — set RAG_API_URL or QDRANT_HOST to ground answers in indexed content")
			return nil, nil, noop, nil
		}
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, nil, noop, fmt.Errorf("retrieval: %w", err)
	}

	var (
		searcher rag.Searcher
		pinger   server.Pinger
		closeFn  = noop
	)

	switch backend {
	case "api":
		apiURL := os.Getenv("RAG_API_URL")
		if apiURL == "" {
			return nil, nil, noop, fmt.Errorf("retrieval: RAG_API_URL is required for the api backend")
		}
		fc := rag.NewFetcherClient(&rag.FetcherConfig{
			BaseURL: apiURL,
			APIKey:  os.Getenv("RAG_API_KEY"),
		})
		searcher, pinger = fc, fc
		log.Info("retrieval: using content-fetcher API", slog.String("url", apiURL))

	case "qdrant":
		qs, err := rag.NewQdrantSearcher(&rag.QdrantConfig{
			Host:       os.Getenv("QDRANT_HOST"),
			Port:       envInt("QDRANT_PORT", 0),
			Collection: envOrDefault("QDRANT_COLLECTION", "site-content"),
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			UseTLS:     os.Getenv("QDRANT_TLS") == "true",
		})
		if err != nil {
			return nil, nil, noop, fmt.Errorf("retrieval: %w", err)
		}
		searcher, pinger = qs, qs
		closeFn = func() { _ = qs.Close() }
		log.Info("retrieval: using Qdrant",
			slog.String("host", os.Getenv("QDRANT_HOST")),
			slog.String("collection", envOrDefault("QDRANT_COLLECTION", "site-content")),
		)

	default:
		return nil, nil, noop, fmt.Errorf("retrieval: unknown RAG_BACKEND %q — valid values: api, qdrant", backend)
	}

	retriever := rag.NewRetriever(&rag.Config{
		Embedder:       emb,
		Searcher:       searcher,
		Limit:          envInt("RAG_TOP_K", 0),
		ScoreThreshold: envFloat32("RAG_SCORE_THRESHOLD", 0),
	})
	if retriever == nil {
		return nil, nil, closeFn, fmt.Errorf("retrieval: failed to construct retriever")
	}

	return retriever, pinger, closeFn, nil
}

// envOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// envFloat32 returns the float32 value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func envFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}
