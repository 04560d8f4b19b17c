package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
logging:
  level: debug
reddit:
  clientId: file-client
  username: bot
stories:
  - author: Isha73
    stories: ["Beneath Two Suns", "Iron Harvest"]
settings:
  botEnabled: true
  workDir: /tmp/scribe
mail:
  sender: bot@example.org
  smtpHost: smtp.example.org
  receiver: reader@example.org
  errorReceiver: ops@example.org
`

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GALACTIC_SCRIBE_CONFIG", path)

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level: %s", cfg.Logging.Level)
	}
	if cfg.Reddit.ClientID != "file-client" {
		t.Fatalf("file value not applied: %s", cfg.Reddit.ClientID)
	}
	if cfg.Reddit.Subreddit != "hfy" {
		t.Fatalf("default subreddit lost: %s", cfg.Reddit.Subreddit)
	}
	if cfg.Mail.SMTPPort != 587 {
		t.Fatalf("default smtp port lost: %d", cfg.Mail.SMTPPort)
	}
	if cfg.Ledger.MaxSizeMiB != 25 {
		t.Fatalf("default ledger cap lost: %d", cfg.Ledger.MaxSizeMiB)
	}

	if len(cfg.Stories) != 1 || len(cfg.Stories[0].Stories) != 2 {
		t.Fatalf("unexpected stories: %+v", cfg.Stories)
	}
	if cfg.Stories[0].Author != "Isha73" {
		t.Fatalf("unexpected author: %s", cfg.Stories[0].Author)
	}
}

func TestLoadEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GALACTIC_SCRIBE_CONFIG", path)
	t.Setenv("REDDIT_CLIENT_ID", "env-client")
	t.Setenv("SMTP_PASSWORD", "env-secret")

	cfg := Load()

	if cfg.Reddit.ClientID != "env-client" {
		t.Fatalf("env override not applied: %s", cfg.Reddit.ClientID)
	}
	if cfg.Mail.Password != "env-secret" {
		t.Fatalf("smtp password override not applied")
	}
}

func TestLoadDisabledBot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "settings:\n  botEnabled: false\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GALACTIC_SCRIBE_CONFIG", path)

	cfg := Load()
	if cfg.Settings.Enabled() {
		t.Fatalf("expected bot to be disabled")
	}
	if cfg.Settings.WorkDir != "." {
		t.Fatalf("default work dir lost: %s", cfg.Settings.WorkDir)
	}
}
