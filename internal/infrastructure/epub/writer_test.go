package epub

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"GalacticScribe/internal/domain"
)

func TestWriteBookProducesContainerFile(t *testing.T) {
	t.Parallel()

	book := domain.NewBookDocument("Beneath Two Suns", "Isha73", "en")
	book.AddChapter(domain.ValidatedChapter{
		Title:     "Beneath Two Suns - Chapter 1",
		CreatedAt: time.Unix(150, 0).UTC(),
		Body:      "<p>" + strings.Repeat("one ", 30) + "</p>",
		FileID:    "Beneath Two Suns - Chapter 1",
	})
	book.AddChapter(domain.ValidatedChapter{
		Title:     "Beneath Two Suns - Chapter 2",
		CreatedAt: time.Unix(200, 0).UTC(),
		Body:      "<p>" + strings.Repeat("two ", 30) + "</p>",
		FileID:    "Beneath Two Suns - Chapter 2",
	})

	path := filepath.Join(t.TempDir(), "Beneath Two Suns.epub")
	w := NewWriter(nil)
	if err := w.WriteBook(book, path); err != nil {
		t.Fatalf("WriteBook error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat book file: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("book file is empty")
	}
}

func TestWriteBookFailsOnUnwritablePath(t *testing.T) {
	t.Parallel()

	book := domain.NewBookDocument("Beneath Two Suns", "Isha73", "en")
	w := NewWriter(nil)

	missing := filepath.Join(t.TempDir(), "no-such-dir", "book.epub")
	if err := w.WriteBook(book, missing); err == nil {
		t.Fatalf("expected serialization failure to propagate")
	}
}
