// Package epub serializes assembled books into the container format.
package epub

import (
	"fmt"
	"log/slog"

	goepub "github.com/go-shiori/go-epub"

	"GalacticScribe/internal/domain"
	"GalacticScribe/internal/ports"
)

// Writer builds the container from a BookDocument. Section order defines
// both the table of contents and the spine, so chapters must arrive already
// sorted.
type Writer struct {
	logger *slog.Logger
}

var _ ports.BookWriter = (*Writer)(nil)

// NewWriter returns a container writer.
func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{logger: logger}
}

// WriteBook serializes book to path. Failures propagate to the orchestrator;
// there is no recovery at this layer.
func (w *Writer) WriteBook(book *domain.BookDocument, path string) error {
	doc, err := goepub.NewEpub(book.Title)
	if err != nil {
		return fmt.Errorf("create book container: %w", err)
	}
	doc.SetAuthor(book.Author)
	doc.SetLang(book.Language)

	for _, ch := range book.Chapters {
		if _, err := doc.AddSection(ch.Body, ch.Title, ch.FileID+".xhtml", ""); err != nil {
			return fmt.Errorf("add chapter %q: %w", ch.Title, err)
		}
	}

	if err := doc.Write(path); err != nil {
		return fmt.Errorf("write book %s: %w", path, err)
	}

	if w.logger != nil {
		w.logger.Debug("book written", "path", path, "chapters", len(book.Chapters))
	}
	return nil
}
