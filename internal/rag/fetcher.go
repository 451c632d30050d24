package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// FetcherClient implements Searcher against the hosted content-fetcher API:
// the previously built service that indexes fifa.com pages and exposes a
// semantic search endpoint over HTTP. It is safe for concurrent use.
type FetcherClient struct {
	// baseURL is the API base (e.g. "https://rag.fanzone.internal").
	baseURL string
	// apiKey is the optional Bearer credential.
	apiKey string
	// client is the shared HTTP client with a sensible timeout.
	client *http.Client
}

// FetcherConfig holds the settings for constructing a FetcherClient.
type FetcherConfig struct {
	// BaseURL is the content-fetcher API base URL. Required.
	BaseURL string
	// APIKey is the optional Bearer credential.
	APIKey string
}

// NewFetcherClient constructs a FetcherClient from the given config.
func NewFetcherClient(cfg *FetcherConfig) *FetcherClient {
	return &FetcherClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// fetcherSearchRequest is the JSON body sent to the /search endpoint.
type fetcherSearchRequest struct {
	Query          string    `json:"query"`
	QueryEmbedding []float32 `json:"query_embedding,omitempty"`
	Limit          int       `json:"limit"`
	ScoreThreshold float32   `json:"score_threshold"`
}

// fetcherSearchResponse is the JSON body returned from the /search endpoint.
type fetcherSearchResponse struct {
	Results []struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Content   string    `json:"content"`
		URL       string    `json:"url"`
		Score     float32   `json:"score"`
		IndexedAt time.Time `json:"indexed_at"`
	} `json:"results"`
	Error string `json:"error,omitempty"`
}

// Search issues a semantic search against the content-fetcher API and
// normalises the results. Results without a public URL get one derived from
// their content via ClassifyURL; results without a title fall back to their
// internal ID so citations are never blank.
func (c *FetcherClient) Search(ctx context.Context, req SearchRequest) ([]Document, error) {
	body := fetcherSearchRequest{
		Query:          req.Query,
		QueryEmbedding: req.Embedding,
		Limit:          req.Limit,
		ScoreThreshold: req.ScoreThreshold,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("fetcher: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("fetcher: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetcher: request failed: %w", err)
	}
	defer resp.Body.Close()

	var result fetcherSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("fetcher: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if result.Error != "" {
			msg = result.Error
		}
		return nil, fmt.Errorf("fetcher: %s", msg)
	}

	docs := make([]Document, 0, len(result.Results))
	for _, r := range result.Results {
		doc := Document{
			URL:       r.URL,
			Title:     r.Title,
			Content:   r.Content,
			FetchedAt: r.IndexedAt,
			Score:     r.Score,
		}
		if doc.URL == "" {
			doc.URL = ClassifyURL(r.ID, r.Content)
		}
		if doc.Title == "" {
			doc.Title = r.ID
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// Ping checks the content-fetcher API's health endpoint. Used by the
// readiness probe.
func (c *FetcherClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("fetcher: create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetcher: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fetcher: health check returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// Name returns the dependency label used in readiness responses.
func (c *FetcherClient) Name() string { return "content-fetcher" }
