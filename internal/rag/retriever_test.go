package rag

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeEmbedder implements Embedder for tests.
type fakeEmbedder struct {
	// vec is returned for every input text.
	vec []float32
	// err, if set, is returned instead.
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

// fakeSearcher implements Searcher for tests and records the last request.
type fakeSearcher struct {
	docs []Document
	err  error
	last SearchRequest
}

func (f *fakeSearcher) Search(_ context.Context, req SearchRequest) ([]Document, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func newTestRetriever(emb Embedder, s Searcher) *Retriever {
	return NewRetriever(&Config{Embedder: emb, Searcher: s})
}

func TestRetrieve_Success(t *testing.T) {
	t.Parallel()

	docs := []Document{
		{URL: ticketsURL, Title: "Tickets", Content: "prices", FetchedAt: time.Now(), Score: 0.9},
	}
	searcher := &fakeSearcher{docs: docs}
	r := newTestRetriever(&fakeEmbedder{vec: []float32{0.1, 0.2}}, searcher)

	ret := r.Retrieve(context.Background(), "ticket prices")

	if !ret.HasResults() {
		t.Fatalf("expected results, got status %v", ret.Status)
	}
	if len(ret.Documents) != 1 || ret.Documents[0].URL != ticketsURL {
		t.Errorf("unexpected documents: %+v", ret.Documents)
	}
	if searcher.last.Query != "ticket prices" {
		t.Errorf("searcher received query %q", searcher.last.Query)
	}
	if len(searcher.last.Embedding) != 2 {
		t.Errorf("searcher received embedding of length %d, want 2", len(searcher.last.Embedding))
	}
	if searcher.last.Limit != defaultLimit {
		t.Errorf("searcher received limit %d, want %d", searcher.last.Limit, defaultLimit)
	}
}

// TestRetrieve_EmbeddingFailure verifies that an embedding failure degrades
// to the unavailable status instead of raising — chat must continue.
func TestRetrieve_EmbeddingFailure(t *testing.T) {
	t.Parallel()

	r := newTestRetriever(
		&fakeEmbedder{err: errors.New("embed backend down")},
		&fakeSearcher{},
	)

	ret := r.Retrieve(context.Background(), "anything")

	if ret.Status != StatusUnavailable {
		t.Errorf("expected StatusUnavailable, got %v", ret.Status)
	}
	if ret.HasResults() {
		t.Error("HasResults must be false on embedding failure")
	}
}

// TestRetrieve_SearchFailure verifies that a search failure is treated
// identically to an empty result set, triggering the no-answer policy.
func TestRetrieve_SearchFailure(t *testing.T) {
	t.Parallel()

	r := newTestRetriever(
		&fakeEmbedder{vec: []float32{0.5}},
		&fakeSearcher{err: errors.New("connection refused")},
	)

	ret := r.Retrieve(context.Background(), "who won the final")

	if ret.Status != StatusEmpty {
		t.Errorf("expected StatusEmpty on search failure, got %v", ret.Status)
	}
	if len(ret.Documents) != 0 {
		t.Errorf("expected no documents, got %d", len(ret.Documents))
	}
}

func TestRetrieve_NoResults(t *testing.T) {
	t.Parallel()

	r := newTestRetriever(&fakeEmbedder{vec: []float32{0.5}}, &fakeSearcher{})

	ret := r.Retrieve(context.Background(), "weather on the moon")

	if ret.Status != StatusEmpty {
		t.Errorf("expected StatusEmpty, got %v", ret.Status)
	}
	if ret.HasResults() {
		t.Error("HasResults must be false for an empty result set")
	}
}

func TestNewRetriever_MissingDependencies(t *testing.T) {
	t.Parallel()

	if r := NewRetriever(nil); r != nil {
		t.Error("expected nil retriever for nil config")
	}
	if r := NewRetriever(&Config{Searcher: &fakeSearcher{}}); r != nil {
		t.Error("expected nil retriever without embedder")
	}
	if r := NewRetriever(&Config{Embedder: &fakeEmbedder{}}); r != nil {
		t.Error("expected nil retriever without searcher")
	}
}

func TestHasResults(t *testing.T) {
	t.Parallel()

	var nilRet *Retrieval
	if nilRet.HasResults() {
		t.Error("nil retrieval must report no results")
	}
	empty := &Retrieval{Status: StatusOK}
	if empty.HasResults() {
		t.Error("OK status with zero documents must report no results")
	}
}
