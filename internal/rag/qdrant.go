package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantConfig holds connection parameters for a Qdrant-backed search.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the Qdrant collection holding the site index.
	Collection string

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantSearcher implements Searcher directly against a Qdrant collection,
// for deployments that run the index locally instead of behind the hosted
// content-fetcher API. The collection is populated out-of-band; this client
// only reads.
type QdrantSearcher struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// collection is the collection name queried.
	collection string
}

// NewQdrantSearcher creates a read-only searcher over an existing Qdrant
// collection.
func NewQdrantSearcher(cfg *QdrantConfig) (*QdrantSearcher, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	return &QdrantSearcher{client: client, collection: cfg.Collection}, nil
}

// Search performs a cosine similarity query and normalises the payloads into
// documents. The score threshold is applied server-side.
func (s *QdrantSearcher) Search(ctx context.Context, req SearchRequest) ([]Document, error) {
	limit := uint64(req.Limit) //nolint:gosec // limit is a small positive constant
	threshold := req.ScoreThreshold

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(req.Embedding...),
		Limit:          &limit,
		ScoreThreshold: &threshold,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search failed: %w", err)
	}

	docs := make([]Document, 0, len(results))
	for _, r := range results {
		doc := Document{Score: r.Score}
		id := r.Id.GetUuid()
		if p := r.Payload; p != nil {
			if v, ok := p["content"]; ok {
				doc.Content = v.GetStringValue()
			}
			if v, ok := p["title"]; ok {
				doc.Title = v.GetStringValue()
			}
			if v, ok := p["url"]; ok {
				doc.URL = v.GetStringValue()
			}
			if v, ok := p["indexed_at"]; ok {
				if t, perr := time.Parse(time.RFC3339, v.GetStringValue()); perr == nil {
					doc.FetchedAt = t
				}
			}
		}
		if doc.URL == "" {
			doc.URL = ClassifyURL(id, doc.Content)
		}
		if doc.Title == "" {
			doc.Title = id
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// Ping calls the Qdrant HealthCheck RPC. Used by the readiness probe.
func (s *QdrantSearcher) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant: health check failed: %w", err)
	}
	return nil
}

// Name returns the dependency label used in readiness responses.
func (s *QdrantSearcher) Name() string { return "qdrant" }

// Close closes the underlying gRPC connection.
func (s *QdrantSearcher) Close() error {
	return s.client.Close()
}
