package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/fanzone/fanchat-go/internal/chat"
	"github.com/fanzone/fanchat-go/internal/embedder"
	"github.com/fanzone/fanchat-go/internal/logging"
	"github.com/fanzone/fanchat-go/internal/provider"
	"github.com/fanzone/fanchat-go/internal/server"
	"github.com/fanzone/fanchat-go/internal/tracing"
)

// NewServeCmd constructs the `fanchat serve` command, which starts the HTTP
// server consumed by the site widget.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the fanchat HTTP server",
		Long: `Start the fanchat HTTP server.

The server exposes the streaming SSE chat API used by the fifa.com widget,
plus health, readiness, and Prometheus metrics endpoints.

Examples:
  fanchat serve
  fanchat serve --port 9090
  MODEL_PROVIDER=azure fanchat serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			providerCfg := provider.ConfigFromEnv()
			chatModel, err := provider.New(ctx, providerCfg)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model provider: %w", err)
			}
			log.Info("provider initialised", slog.String("provider", string(providerCfg.Backend)))

			// Flag embedding misconfiguration at startup, before the first
			// visitor question silently degrades to unaugmented chat.
			if err := embedder.ValidateForRetrieval(log); err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			retriever, searchPinger, closeRetriever, err := buildRetriever(log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer closeRetriever()

			svc, err := chat.NewService(chatModel, retriever)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise chat service: %w", err)
			}

			pingers := []server.Pinger{
				server.NewLLMPinger(chatModel, string(providerCfg.Backend)),
			}
			if searchPinger != nil {
				pingers = append(pingers, searchPinger)
			}

			srv, err := server.New(svc, &server.Config{
				Host:      envOrDefault("SERVER_HOST", host),
				Port:      envInt("SERVER_PORT", port),
				Logger:    log,
				Pingers:   pingers,
				APIKey:    os.Getenv("FANCHAT_API_KEY"),
				RateLimit: float64(envFloat32("SERVER_RATE_LIMIT", 0)),
				RateBurst: envInt("SERVER_RATE_BURST", 0),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
