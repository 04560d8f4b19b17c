// Package ledger keeps the rotating per-date delivery log.
package ledger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"GalacticScribe/internal/config"
	"GalacticScribe/internal/domain"
	"GalacticScribe/internal/ports"
)

const logSuffix = "_email_sent.log"

// FileLedger appends delivery records to one file per calendar date and
// prunes the oldest files once the directory total exceeds the cap.
type FileLedger struct {
	dir      string
	maxBytes int64
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.DeliveryLedger = (*FileLedger)(nil)

// New builds a ledger rooted at cfg.Dir with a cfg.MaxSizeMiB retention cap.
func New(cfg config.LedgerConfig, logger *slog.Logger) *FileLedger {
	return &FileLedger{
		dir:      cfg.Dir,
		maxBytes: cfg.MaxSizeMiB * 1024 * 1024,
		logger:   logger,
		now:      time.Now,
	}
}

// RecordDelivery appends "<timestamp> - <storyTitle>" to the current date's
// log file, creating the directory if absent, then enforces retention.
func (l *FileLedger) RecordDelivery(storyTitle string) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create log dir %s: %w", l.dir, err)
	}

	rec := domain.DeliveryRecord{At: l.now(), StoryTitle: storyTitle}
	path := filepath.Join(l.dir, rec.At.Format("2006-01-02")+logSuffix)
	line := rec.Line()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("append delivery record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log file %s: %w", path, err)
	}

	return l.enforceRetention()
}

// enforceRetention removes the single oldest log file while the directory
// total exceeds the cap, never touching a newer file before an older one.
// Files are ordered by modification time with the date-stamped name as
// tie-break; per-date append-only files make that creation order.
func (l *FileLedger) enforceRetention() error {
	files, total, err := logFiles(l.dir)
	if err != nil {
		return err
	}

	for total > l.maxBytes && len(files) > 0 {
		oldest := files[0]
		files = files[1:]
		if err := os.Remove(oldest.path); err != nil {
			return fmt.Errorf("prune %s: %w", oldest.path, err)
		}
		total -= oldest.size
		if l.logger != nil {
			l.logger.Info("pruned ledger file", "file", oldest.path, "remaining_bytes", total)
		}
	}
	return nil
}

type logFile struct {
	path    string
	size    int64
	modTime time.Time
}

func logFiles(dir string) ([]logFile, int64, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.log"))
	if err != nil {
		return nil, 0, fmt.Errorf("list log files: %w", err)
	}

	files := make([]logFile, 0, len(paths))
	var total int64
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, 0, fmt.Errorf("stat %s: %w", p, err)
		}
		files = append(files, logFile{path: p, size: info.Size(), modTime: info.ModTime()})
		total += info.Size()
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].modTime.Equal(files[j].modTime) {
			return files[i].path < files[j].path
		}
		return files[i].modTime.Before(files[j].modTime)
	})
	return files, total, nil
}
