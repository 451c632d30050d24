// Package budget provides token budget estimation for the assembled system
// prompt. Because the service supports multiple LLM backends with different
// tokenizers, it uses a conservative character-based heuristic:
// 1 token ≈ 4 characters (English prose). This deliberately under-estimates
// token counts to leave headroom for model-specific overhead.
package budget

import (
	"github.com/fanzone/fanchat-go/internal/rag"
)

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English text; using 3 would
	// be more aggressive but risks overflowing context windows.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default input context budget in tokens.
	// Conservative enough to fit within 8k-context models while leaving room
	// for the behavioural instructions and the model's own output.
	DefaultMaxContextTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimateDocument returns the estimated token count for one retrieved
// document as it will appear serialized in the prompt: title, content, URL,
// and a small per-block overhead for the source header and timestamp line.
func EstimateDocument(doc rag.Document) int {
	// ~16 tokens covers the "[Source N]"/"Content:"/"URL:"/"Last indexed:"
	// scaffolding around each block.
	return 16 + Estimate(doc.Title) + Estimate(doc.Content) + Estimate(doc.URL)
}

// TrimDocuments drops documents from the end of docs — the backend returns
// them best-first, so the lowest-ranked go first — until the estimated total
// of reservedTokens plus all remaining blocks fits within maxTokens.
//
// reservedTokens accounts for the parts of the prompt that are never trimmed
// (template text, behavioural rules, the user query). At least one document
// is always kept if any were supplied: a single oversized document is the
// operator's indexing problem, not a reason to trigger the no-answer policy.
func TrimDocuments(docs []rag.Document, reservedTokens, maxTokens int) []rag.Document {
	if len(docs) == 0 {
		return docs
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxContextTokens
	}

	total := reservedTokens
	for _, doc := range docs {
		total += EstimateDocument(doc)
	}

	for len(docs) > 1 && total > maxTokens {
		total -= EstimateDocument(docs[len(docs)-1])
		docs = docs[:len(docs)-1]
	}
	return docs
}
