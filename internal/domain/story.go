package domain

import (
	"fmt"
	"strings"
	"time"
)

// StoryTarget identifies one configured story: who writes it and the title
// fragment that matches its chapter posts. Built once from config, never
// mutated afterwards.
type StoryTarget struct {
	Author   string
	Fragment string
}

// ChapterSubmission is one remote post that matched a story fragment.
type ChapterSubmission struct {
	Title     string
	CreatedAt time.Time
	HTMLBody  string
	Forum     string
}

// ValidatedChapter is a submission that passed validation, carrying the
// normalized markup and a filesystem-safe identifier derived from its title.
type ValidatedChapter struct {
	Title     string
	CreatedAt time.Time
	Body      string
	FileID    string
}

// BookDocument is the assembled e-book: metadata plus chapters in ascending
// creation-time order. It lives for one pipeline pass only; the serialized
// file is deleted right after a successful delivery.
type BookDocument struct {
	Title    string
	Author   string
	Language string
	Chapters []ValidatedChapter
}

// NewBookDocument creates an empty book for one story.
func NewBookDocument(title, author, language string) *BookDocument {
	return &BookDocument{Title: title, Author: author, Language: language}
}

// AddChapter appends a chapter; callers add in ascending creation-time order.
func (b *BookDocument) AddChapter(ch ValidatedChapter) {
	b.Chapters = append(b.Chapters, ch)
}

// DeliveryRecord is one append-only ledger entry.
type DeliveryRecord struct {
	At         time.Time
	StoryTitle string
}

// Line renders the record's on-disk form, newline included.
func (r DeliveryRecord) Line() string {
	return r.At.Format("2006-01-02 15:04:05") + " - " + r.StoryTitle + "\n"
}

// RunSummary accumulates per-story outcome lines across one pipeline run,
// plus the paths of e-book files that failed to deliver and were left on
// disk for manual recovery.
type RunSummary struct {
	Lines       []string
	FailedFiles []string
}

// AddSuccess records a delivered story.
func (s *RunSummary) AddSuccess(story, author string) {
	s.Lines = append(s.Lines, fmt.Sprintf("Successfully processed and sent %s by %s", story, author))
}

// AddFailure records a failed delivery and keeps the undelivered file path.
func (s *RunSummary) AddFailure(line, filePath string) {
	s.Lines = append(s.Lines, line)
	if filePath != "" {
		s.FailedFiles = append(s.FailedFiles, filePath)
	}
}

// Body renders the plain-text summary email body, one line per story.
func (s *RunSummary) Body() string {
	return "Summary:\n\n" + strings.Join(s.Lines, "\n")
}
