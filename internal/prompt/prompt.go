// Package prompt assembles the system prompt sent to the chat model. It is
// pure string construction: given a retrieval result it produces either the
// strict-citation prompt populated with the retrieved documents, or the
// fixed no-answer prompt. Identical input always yields byte-identical
// output.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/fanzone/fanchat-go/internal/budget"
	"github.com/fanzone/fanchat-go/internal/rag"
)

// NoAnswerSentence is the exact reply the model must give when no relevant
// indexed content exists. The wording is a policy requirement: the widget's
// operators verify it verbatim, so it must never be rephrased.
const NoAnswerSentence = "I don't know based on current fifa.com content I have indexed."

// noAnswerPrompt instructs the model to admit ignorance rather than answer
// from its trained knowledge. It contains no document content at all, so
// nothing can leak into the reply.
const noAnswerPrompt = `You are the chat assistant on fifa.com.

No indexed fifa.com content matches the visitor's question. You must reply
with exactly this sentence:

"` + NoAnswerSentence + `"

Then suggest that the visitor check fifa.com directly for the latest
information. Do not answer the question from your own knowledge. Do not
mention or cite any sources. Do not add anything else.`

// citationHeader opens the strict-citation prompt, ahead of the serialized
// document blocks.
const citationHeader = `You are the chat assistant on fifa.com. Answer the visitor's question using
ONLY the indexed content below.

Indexed content:

`

// citationRules closes the strict-citation prompt, ahead of the literal user
// query.
const citationRules = `

Rules:
- Answer only from the indexed content above. If it does not contain the
  answer, reply with exactly: "` + NoAnswerSentence + `"
- Cite the sources you used as [Source N] references.
- Only discuss fifa.com and its tournament content. Decline unrelated topics.
- Never invent facts, dates, prices, or URLs that are not in the content.
- Keep a professional, helpful tone.

Question: `

// blockSeparator joins serialized document blocks.
const blockSeparator = "\n---\n"

// BuildSystemPrompt returns the system prompt for one request. A nil
// retrieval, an empty one, or one degraded by a search failure all produce
// the no-answer prompt — the sole branch point is whether citable documents
// exist. Callers handle rag.StatusUnavailable themselves (unaugmented chat)
// and never pass it here.
func BuildSystemPrompt(ret *rag.Retrieval, query string) string {
	if !ret.HasResults() {
		return noAnswerPrompt
	}

	reserved := budget.Estimate(citationHeader) + budget.Estimate(citationRules) + budget.Estimate(query)
	docs := budget.TrimDocuments(ret.Documents, reserved, budget.DefaultMaxContextTokens)

	var sb strings.Builder
	sb.WriteString(citationHeader)
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString(blockSeparator)
		}
		sb.WriteString(formatDocument(i+1, doc))
	}
	sb.WriteString(citationRules)
	sb.WriteString(query)
	return sb.String()
}

// formatDocument serializes one retrieved document as a numbered block. The
// title, content, URL, and index timestamp appear verbatim so the model can
// quote them exactly.
func formatDocument(n int, doc rag.Document) string {
	return fmt.Sprintf("[Source %d] %s\nContent: %s\nURL: %s\nLast indexed: %s",
		n, doc.Title, doc.Content, doc.URL, doc.FetchedAt.Format(time.RFC3339))
}
