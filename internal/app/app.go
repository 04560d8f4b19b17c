package app

import (
	"context"
	"fmt"
	"log/slog"

	"GalacticScribe/internal/config"
	"GalacticScribe/internal/infrastructure/epub"
	"GalacticScribe/internal/infrastructure/ledger"
	"GalacticScribe/internal/infrastructure/mail"
	"GalacticScribe/internal/infrastructure/reddit"
	"GalacticScribe/internal/logging"
	"GalacticScribe/internal/ports"
	"GalacticScribe/internal/usecase"
)

// Application wires config to adapters and owns process lifecycle: startup
// notification, one pipeline pass, terminal error reporting.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	mailer   ports.Mailer
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	source := reddit.NewClient(cfg.Reddit, nil, baseLogger.With("component", "source.reddit"))
	writer := epub.NewWriter(baseLogger.With("component", "epub"))
	mailer := mail.NewNotifier(cfg.Mail, baseLogger.With("component", "mail"))
	deliveryLog := ledger.New(cfg.Ledger, baseLogger.With("component", "ledger"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source: source,
		Writer: writer,
		Mailer: mailer,
		Ledger: deliveryLog,
		Config: cfg,
		Logger: baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, mailer: mailer, pipeline: pipeline}
}

// Run sends the startup notification, executes one pipeline pass, and
// reports any terminal failure by email before returning it.
func (a *Application) Run(ctx context.Context) error {
	if err := a.mailer.Send(ctx, ports.Message{
		Recipient: a.cfg.Mail.ErrorReceiver,
		Subject:   "Bot Started",
		Body:      "The bot has started.",
	}); err != nil {
		return fmt.Errorf("send startup notification: %w", err)
	}

	if err := a.pipeline.Run(ctx); err != nil {
		a.logger.Error("failed to download stories", "error", err)

		if sendErr := a.mailer.Send(ctx, ports.Message{
			Recipient: a.cfg.Mail.ErrorReceiver,
			Subject:   "Bot Error",
			Body:      fmt.Sprintf("Bot encountered an error: %v", err),
		}); sendErr != nil {
			a.logger.Error("error notification failed", "error", sendErr)
		}
		return err
	}

	return nil
}
