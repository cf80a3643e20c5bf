package servecmder

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/glimpse/cmd/glimpse/settings"
	"github.com/papercomputeco/glimpse/pkg/analysis"
	"github.com/papercomputeco/glimpse/pkg/logger"
	"github.com/papercomputeco/glimpse/pkg/provider"
	"github.com/papercomputeco/glimpse/server"
)

const serveLongDesc string = `Serve the image analysis page.

Open the page in a browser, paste your API key, upload a jpg or png
image and optionally ask a question about it. The description is
streamed back as the model produces it. The key is sent with each
analysis and never stored by the server.

Examples:
  glimpse serve
  glimpse serve --listen 127.0.0.1:9000 --provider anthropic
  glimpse serve --base-url http://localhost:11434/v1 --model llava`

const serveShortDesc string = "Serve the image analysis web page"

type serveCommander struct {
	settings   *settings.Flags
	listenAddr string
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmder.settings = settings.Register(cmd)
	cmd.Flags().StringVarP(&cmder.listenAddr, "listen", "l", "", "Address to listen on (default :8080)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := c.settings.Resolve()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("listen") {
		cfg.Server.ListenAddr = c.listenAddr
	}

	log := logger.NewLogger(cfg.Logging.Debug)
	defer log.Sync()

	log.Info("glimpse starting",
		zap.String("listen", cfg.Server.ListenAddr),
		zap.String("provider", cfg.Provider.Name),
		zap.String("model", cfg.Provider.Model),
		zap.Bool("debug", cfg.Logging.Debug),
	)

	describer, err := provider.New(cfg.ProviderOptions())
	if err != nil {
		return fmt.Errorf("could not create provider: %w", err)
	}

	analyzer := analysis.New(describer, analysis.Prompt{
		Instruction: cfg.Prompt.Instruction,
		Separator:   cfg.Prompt.Separator,
	}, cfg.Provider.Timeout, log)

	srv, err := server.New(server.Config{
		ListenAddr:     cfg.Server.ListenAddr,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Provider:       cfg.Provider.Name,
		Model:          cfg.Provider.Model,
	}, analyzer, log)
	if err != nil {
		return fmt.Errorf("could not create server: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			if err := srv.Shutdown(); err != nil {
				log.Error("shutdown failed", zap.Error(err))
			}
		case <-done:
		}
	}()

	if err := srv.Run(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
