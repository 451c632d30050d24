package rag

import (
	"context"
	"log/slog"

	"github.com/fanzone/fanchat-go/internal/logging"
)

// Default search parameters applied when the caller leaves them zero.
const (
	// defaultLimit is the number of documents requested per query.
	defaultLimit = 5

	// defaultScoreThreshold drops weakly related results. 0.35 was tuned
	// against the indexed tournament corpus; lower values pull in navigation
	// boilerplate chunks.
	defaultScoreThreshold = 0.35
)

// Retriever orchestrates one retrieval attempt: embed the query, search the
// content index, normalise the results. It never returns an error — every
// failure degrades to an explicit Retrieval status so a broken index can
// never abort a chat request.
type Retriever struct {
	// embedder converts the query text to a dense vector.
	embedder Embedder

	// searcher performs the similarity search.
	searcher Searcher

	// limit is the number of results requested per query.
	limit int

	// scoreThreshold is the minimum similarity score passed to the backend.
	scoreThreshold float32
}

// Config holds the knobs for constructing a Retriever.
type Config struct {
	// Embedder converts query text to a dense vector. Required.
	Embedder Embedder

	// Searcher performs the similarity search. Required.
	Searcher Searcher

	// Limit is the number of results per query. Defaults to 5.
	Limit int

	// ScoreThreshold is the minimum similarity score. Defaults to 0.35.
	ScoreThreshold float32
}

// NewRetriever constructs a Retriever. Returns nil if either dependency is
// missing, which callers treat as "retrieval not configured".
func NewRetriever(cfg *Config) *Retriever {
	if cfg == nil || cfg.Embedder == nil || cfg.Searcher == nil {
		return nil
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	threshold := cfg.ScoreThreshold
	if threshold <= 0 {
		threshold = defaultScoreThreshold
	}
	return &Retriever{
		embedder:       cfg.Embedder,
		searcher:       cfg.Searcher,
		limit:          limit,
		scoreThreshold: threshold,
	}
}

// Retrieve embeds the query, runs the similarity search, and returns the
// normalised result. The query must be non-empty and trimmed — callers skip
// retrieval entirely for empty queries.
//
// Failure handling is deliberate, not defensive:
//   - embedding failure → StatusUnavailable (chat proceeds unaugmented);
//   - search failure or zero results → StatusEmpty (no-answer policy).
func (r *Retriever) Retrieve(ctx context.Context, query string) *Retrieval {
	log := logging.FromContext(ctx)

	embeddings, err := r.embedder.Embed(ctx, []string{query})
	if err != nil || len(embeddings) == 0 {
		log.Warn("retrieval: query embedding failed, continuing without context",
			slog.Any("error", err),
		)
		return &Retrieval{Status: StatusUnavailable}
	}

	docs, err := r.searcher.Search(ctx, SearchRequest{
		Query:          query,
		Embedding:      embeddings[0],
		Limit:          r.limit,
		ScoreThreshold: r.scoreThreshold,
	})
	if err != nil {
		// A broken index is treated the same as an empty one: the model is
		// not allowed to answer without indexed context.
		log.Warn("retrieval: search failed, applying no-answer policy",
			slog.Any("error", err),
		)
		return &Retrieval{Status: StatusEmpty}
	}

	if len(docs) == 0 {
		log.Info("retrieval: no documents above threshold",
			slog.String("query", query),
		)
		return &Retrieval{Status: StatusEmpty}
	}

	log.Info("retrieval: documents found",
		slog.Int("count", len(docs)),
		slog.String("top_url", docs[0].URL),
	)
	return &Retrieval{Documents: docs, Status: StatusOK}
}
