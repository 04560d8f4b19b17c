package ports

import (
	"context"

	"GalacticScribe/internal/domain"
)

// ChapterSource pulls all chapter posts for one story from the remote
// platform, deduplicated by title (newest wins) and sorted ascending by
// creation time.
type ChapterSource interface {
	FetchStory(ctx context.Context, author, fragment string) ([]domain.ChapterSubmission, error)
}

// BookWriter serializes an assembled book into a container file on disk.
type BookWriter interface {
	WriteBook(book *domain.BookDocument, path string) error
}

// Message is one outbound email. AttachmentPath and Body are both optional.
type Message struct {
	Recipient      string
	Subject        string
	Body           string
	AttachmentPath string
}

// Mailer delivers a single message through the configured transport.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// DeliveryLedger appends delivery records to the rotating local log.
type DeliveryLedger interface {
	RecordDelivery(storyTitle string) error
}
