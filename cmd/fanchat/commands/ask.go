package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fanzone/fanchat-go/internal/chat"
	"github.com/fanzone/fanchat-go/internal/provider"
)

// NewAskCmd constructs the `fanchat ask` command, which sends a single
// question through the full retrieval pipeline and streams the reply to
// stdout. Useful for smoke-testing an index without running the server.
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question against the indexed site content",
		Long: `Ask a single question through the full retrieval pipeline.

The question is embedded, matched against the content index, and answered
by the configured model with strict citations. The reply streams to stdout.

Examples:
  fanchat ask "how much are group stage tickets?"
  fanchat ask "which stadiums host the 2026 World Cup?"
  RAG_BACKEND=qdrant fanchat ask "when is the final?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model provider: %w", err)
			}

			retriever, _, closeRetriever, err := buildRetriever(slog.Default())
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer closeRetriever()

			svc, err := chat.NewService(chatModel, retriever)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise chat service: %w", err)
			}

			messages := []chat.Message{{
				Role:  chat.RoleUser,
				Parts: []chat.Part{{Type: "text", Text: args[0]}},
			}}

			if err := svc.Stream(ctx, messages, os.Stdout); err != nil {
				return err //nolint:wrapcheck // CLI entry point — error goes directly to cobra
			}
			fmt.Println()
			return nil
		},
	}

	return cmd
}
