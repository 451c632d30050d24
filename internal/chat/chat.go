// Package chat turns an incoming widget conversation into a streamed model
// reply. It extracts the retrieval query from the message history, runs the
// retriever, picks the matching system prompt, and pipes the model's stream
// chunks straight to the caller's writer.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/fanzone/fanchat-go/internal/logging"
	"github.com/fanzone/fanchat-go/internal/prompt"
	"github.com/fanzone/fanchat-go/internal/rag"
)

// Message roles accepted on the wire. Unknown roles are dropped during
// conversion rather than rejected, so widget version skew cannot break chat.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Part is one fragment of a widget message. Only text parts carry content
// today; other types are reserved by the widget protocol and ignored here.
type Part struct {
	// Type discriminates the part. Text parts have Type "text".
	Type string `json:"type"`
	// Text is the fragment content for text parts.
	Text string `json:"text"`
}

// Message is one turn of the widget conversation.
type Message struct {
	// Role is the speaker: user, assistant, or system.
	Role string `json:"role"`
	// Parts holds the message fragments in display order.
	Parts []Part `json:"parts"`
}

// Text concatenates the message's text parts in order.
func (m Message) Text() string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if p.Type == "text" {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// ExtractQuery returns the retrieval query for a conversation: the
// concatenated text of the most recent user message, whitespace-trimmed.
// Returns "" when no user message carries text, which callers treat as
// "skip retrieval".
func ExtractQuery(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return strings.TrimSpace(messages[i].Text())
		}
	}
	return ""
}

// Service runs one chat turn end to end: retrieval, prompt selection, model
// streaming. The retriever may be nil, in which case every turn is
// unaugmented.
type Service struct {
	model     model.ToolCallingChatModel
	retriever *rag.Retriever
}

// NewService constructs a Service. The chat model is required; the retriever
// is optional.
func NewService(chatModel model.ToolCallingChatModel, retriever *rag.Retriever) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat: chat model must not be nil")
	}
	return &Service{model: chatModel, retriever: retriever}, nil
}

// Stream runs one chat turn and writes the model's reply chunks to w as they
// arrive. The system prompt is chosen per the retrieval outcome:
//
//   - documents found → strict-citation prompt with the serialized documents;
//   - empty or failed search → fixed no-answer prompt;
//   - embedding unavailable → no system prompt, the model answers unaugmented.
//
// An error before the first chunk means nothing was written to w, so callers
// can still fail the whole request. An error mid-stream leaves a partial
// reply in w.
func (s *Service) Stream(ctx context.Context, messages []Message, w io.Writer) error {
	log := logging.FromContext(ctx)

	einoMsgs := toSchemaMessages(messages)
	if len(einoMsgs) == 0 {
		return fmt.Errorf("chat: conversation has no usable messages")
	}

	query := ExtractQuery(messages)
	if sys := s.systemPrompt(ctx, query); sys != "" {
		einoMsgs = append([]*schema.Message{schema.SystemMessage(sys)}, einoMsgs...)
	}

	sr, err := s.model.Stream(ctx, einoMsgs)
	if err != nil {
		return fmt.Errorf("chat: stream failed: %w", err)
	}
	defer sr.Close()

	var written int
	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("chat: stream receive error: %w", err)
		}
		if msg == nil || msg.Content == "" {
			continue
		}
		n, err := io.WriteString(w, msg.Content)
		written += n
		if err != nil {
			return fmt.Errorf("chat: write error: %w", err)
		}
	}

	log.Info("chat: turn complete",
		slog.Int("bytes_streamed", written),
		slog.Bool("augmented", s.retriever != nil && query != ""),
	)
	return nil
}

// systemPrompt resolves the system prompt for the turn, or "" when the turn
// must run unaugmented (no query, no retriever, or embedding unavailable).
func (s *Service) systemPrompt(ctx context.Context, query string) string {
	if s.retriever == nil || query == "" {
		return ""
	}
	ret := s.retriever.Retrieve(ctx, query)
	if ret.Status == rag.StatusUnavailable {
		return ""
	}
	return prompt.BuildSystemPrompt(ret, query)
}

// toSchemaMessages converts wire messages to model messages, dropping turns
// with unknown roles or no text.
func toSchemaMessages(messages []Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		text := m.Text()
		if text == "" {
			continue
		}
		switch m.Role {
		case RoleUser:
			out = append(out, schema.UserMessage(text))
		case RoleAssistant:
			out = append(out, schema.AssistantMessage(text, nil))
		case RoleSystem:
			out = append(out, schema.SystemMessage(text))
		}
	}
	return out
}
