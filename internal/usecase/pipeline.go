package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cenkalti/backoff/v4"

	"GalacticScribe/internal/config"
	"GalacticScribe/internal/content"
	"GalacticScribe/internal/domain"
	"GalacticScribe/internal/ports"
	"GalacticScribe/internal/retry"
)

const (
	summarySubject = "Stories Download Summary"
	bookExtension  = ".epub"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source  ports.ChapterSource
	Writer  ports.BookWriter
	Mailer  ports.Mailer
	Ledger  ports.DeliveryLedger
	Config  config.Config
	Logger  *slog.Logger
	Backoff func() backoff.BackOff
}

// Pipeline drives one full run: for every configured (author, story) pair,
// fetch → validate → assemble → deliver → ledger, strictly sequential, then
// one consolidated summary email.
type Pipeline struct {
	source ports.ChapterSource
	writer ports.BookWriter
	mailer ports.Mailer
	ledger ports.DeliveryLedger
	cfg    config.Config
	logger *slog.Logger
	policy func() backoff.BackOff
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	policy := deps.Backoff
	if policy == nil {
		policy = retry.Policy
	}
	return &Pipeline{
		source: deps.Source,
		writer: deps.Writer,
		mailer: deps.Mailer,
		ledger: deps.Ledger,
		cfg:    deps.Config,
		logger: deps.Logger,
		policy: policy,
	}
}

// Run executes the whole download operation under the shared retry schedule.
// NOTE: a retried run re-fetches and re-sends every story, including ones
// that already delivered in the failed attempt; there is no per-story
// checkpoint.
func (p *Pipeline) Run(ctx context.Context) error {
	return retry.DoWith(ctx, p.policy(), func() error {
		return p.runOnce(ctx)
	})
}

func (p *Pipeline) runOnce(ctx context.Context) error {
	summary := &domain.RunSummary{}

	if p.cfg.Settings.Enabled() {
		for _, target := range storyTargets(p.cfg.Stories) {
			if err := p.processStory(ctx, target, summary); err != nil {
				return fmt.Errorf("process story %q by %s: %w", target.Fragment, target.Author, err)
			}
		}
	} else {
		p.info("bot disabled, skipping story processing")
	}

	if err := p.mailer.Send(ctx, ports.Message{
		Recipient: p.cfg.Mail.ErrorReceiver,
		Subject:   summarySubject,
		Body:      summary.Body(),
	}); err != nil {
		return fmt.Errorf("send run summary: %w", err)
	}
	return nil
}

// storyTargets flattens the configured author/story mapping into ordered
// (author, fragment) pairs; processing follows this exact order.
func storyTargets(stories []config.StoryConfig) []domain.StoryTarget {
	var targets []domain.StoryTarget
	for _, entry := range stories {
		for _, fragment := range entry.Stories {
			targets = append(targets, domain.StoryTarget{Author: entry.Author, Fragment: fragment})
		}
	}
	return targets
}

// processStory handles one configured pair. Validation failures skip the
// chapter; delivery failures are reported per story and the run moves on;
// everything else propagates to the run wrapper.
func (p *Pipeline) processStory(ctx context.Context, target domain.StoryTarget, summary *domain.RunSummary) error {
	story := target.Fragment
	storyDir := filepath.Join(p.cfg.Settings.WorkDir, content.SanitizeTitle(story))
	if err := os.MkdirAll(storyDir, 0o755); err != nil {
		return fmt.Errorf("create story dir: %w", err)
	}

	subs, err := p.source.FetchStory(ctx, target.Author, story)
	if err != nil {
		return fmt.Errorf("fetch chapters: %w", err)
	}

	book := domain.NewBookDocument(story, target.Author, p.cfg.Settings.Language)
	for _, sub := range subs {
		ok, reason := content.Validate(sub.Title, sub.HTMLBody)
		if !ok {
			p.warn("chapter rejected", "story", story, "reason", reason)
			continue
		}
		body, err := content.Normalize(sub.HTMLBody)
		if err != nil {
			p.warn("chapter normalization failed", "story", story, "chapter", sub.Title, "error", err)
			continue
		}
		book.AddChapter(domain.ValidatedChapter{
			Title:     sub.Title,
			CreatedAt: sub.CreatedAt,
			Body:      body,
			FileID:    content.SanitizeTitle(sub.Title),
		})
	}

	bookPath := filepath.Join(storyDir, content.SanitizeTitle(story)+bookExtension)
	if err := p.writer.WriteBook(book, bookPath); err != nil {
		return fmt.Errorf("serialize book: %w", err)
	}

	if deliverErr := p.deliverBook(ctx, story, bookPath); deliverErr != nil {
		line := fmt.Sprintf("Failed to send and delete EPUB for %s: %v", story, deliverErr)
		p.error("delivery failed", "story", story, "error", deliverErr)

		if notifyErr := p.mailer.Send(ctx, ports.Message{
			Recipient: p.cfg.Mail.ErrorReceiver,
			Subject:   "Error - " + story,
			Body:      line,
		}); notifyErr != nil {
			p.error("error notification failed", "story", story, "error", notifyErr)
		}

		summary.AddFailure(line, bookPath)
		return nil
	}

	summary.AddSuccess(story, target.Author)
	return nil
}

// deliverBook emails the book, removes the transient file, and records the
// delivery. The file stays on disk when any step fails, for manual recovery.
func (p *Pipeline) deliverBook(ctx context.Context, story, bookPath string) error {
	if err := p.mailer.Send(ctx, ports.Message{
		Recipient:      p.cfg.Mail.Receiver,
		Subject:        story,
		AttachmentPath: bookPath,
	}); err != nil {
		return err
	}
	if err := os.Remove(bookPath); err != nil {
		return fmt.Errorf("remove delivered book: %w", err)
	}
	if err := p.ledger.RecordDelivery(story); err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) error(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
