// Package rag implements the retrieval side of the chat pipeline: embedding
// the user's query, searching the content index for semantically related
// fifa.com pages, and normalising the results into documents the prompt
// layer can cite. Concrete search backends (the hosted content-fetcher API,
// Qdrant) satisfy the Searcher interface so the chat layer never depends on
// a specific one.
package rag

import (
	"context"
	"time"
)

// Document is one retrieved unit of indexed site content.
type Document struct {
	// URL is the public, user-facing page the content was indexed from.
	// Derived via ClassifyURL when the backend returns only an internal ID.
	URL string

	// Title is the page title shown in citations.
	Title string

	// Content is the indexed text of the page (or chunk of it).
	Content string

	// FetchedAt is when the page was last indexed.
	FetchedAt time.Time

	// Score is the similarity score assigned during retrieval (0.0–1.0).
	// Zero value means the backend did not report one.
	Score float32
}

// Status describes the outcome of a retrieval attempt. It is an explicit
// marker rather than a nil/error convention so every call site handles the
// degraded paths.
type Status int

const (
	// StatusOK means the search succeeded and returned at least one document.
	StatusOK Status = iota

	// StatusEmpty means the search succeeded with no results, or the search
	// backend failed. Both trigger the no-answer policy: the model must not
	// answer without indexed context.
	StatusEmpty

	// StatusUnavailable means the query embedding could not be computed, so
	// no search was attempted. The caller falls back to unaugmented chat.
	StatusUnavailable
)

// Retrieval is the result of one retrieval attempt. Created per request and
// discarded after prompt assembly.
type Retrieval struct {
	// Documents holds the normalised results in the backend's relevance order.
	Documents []Document

	// Status records how the attempt ended.
	Status Status
}

// HasResults reports whether the retrieval produced citable documents.
func (r *Retrieval) HasResults() bool {
	return r != nil && r.Status == StatusOK && len(r.Documents) > 0
}

// SearchRequest carries one similarity-search query to a backend. Backends
// use Query, Embedding, or both depending on what their API accepts.
type SearchRequest struct {
	// Query is the raw user query text.
	Query string

	// Embedding is the query vector computed by the Embedder.
	Embedding []float32

	// Limit caps the number of results returned.
	Limit int

	// ScoreThreshold drops results scoring below it.
	ScoreThreshold float32
}

// Searcher is the interface for similarity search over the content index.
// Implementations must be safe to call from multiple goroutines.
type Searcher interface {
	// Search returns the ranked documents matching the request.
	Search(ctx context.Context, req SearchRequest) ([]Document, error)
}

// Embedder is the interface for converting text into dense vector embeddings.
// The returned slice is parallel to the input slice.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
