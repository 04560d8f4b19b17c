package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv         = "GALACTIC_SCRIBE_CONFIG"
	redditClientIDEnv     = "REDDIT_CLIENT_ID"
	redditClientSecretEnv = "REDDIT_CLIENT_SECRET"
	redditUsernameEnv     = "REDDIT_USERNAME"
	redditPasswordEnv     = "REDDIT_PASSWORD"
	smtpPasswordEnv       = "SMTP_PASSWORD"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Reddit   RedditConfig   `yaml:"reddit"`
	Stories  []StoryConfig  `yaml:"stories"`
	Settings SettingsConfig `yaml:"settings"`
	Mail     MailConfig     `yaml:"mail"`
	Ledger   LedgerConfig   `yaml:"ledger"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RedditConfig wires platform credentials and the fixed forum to scan.
type RedditConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	UserAgent    string `yaml:"userAgent"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Subreddit    string `yaml:"subreddit"`
}

// StoryConfig maps one author to the story-name fragments tracked for them.
type StoryConfig struct {
	Author  string   `yaml:"author"`
	Stories []string `yaml:"stories"`
}

// SettingsConfig holds run-level switches.
type SettingsConfig struct {
	BotEnabled *bool  `yaml:"botEnabled"`
	WorkDir    string `yaml:"workDir"`
	Language   string `yaml:"language"`
}

// Enabled reports the bot flag, defaulting to on when the file omits it.
func (s SettingsConfig) Enabled() bool {
	return s.BotEnabled == nil || *s.BotEnabled
}

// MailConfig describes the outbound SMTP session and recipients.
type MailConfig struct {
	Sender        string `yaml:"sender"`
	SMTPHost      string `yaml:"smtpHost"`
	SMTPPort      int    `yaml:"smtpPort"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	Receiver      string `yaml:"receiver"`
	ErrorReceiver string `yaml:"errorReceiver"`
}

// LedgerConfig locates the delivery log directory and its retention cap.
type LedgerConfig struct {
	Dir        string `yaml:"dir"`
	MaxSizeMiB int64  `yaml:"maxSizeMiB"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(redditClientIDEnv); v != "" {
		c.Reddit.ClientID = v
	}
	if v := os.Getenv(redditClientSecretEnv); v != "" {
		c.Reddit.ClientSecret = v
	}
	if v := os.Getenv(redditUsernameEnv); v != "" {
		c.Reddit.Username = v
	}
	if v := os.Getenv(redditPasswordEnv); v != "" {
		c.Reddit.Password = v
	}
	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Mail.Password = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Reddit.ClientID != "" {
		base.Reddit.ClientID = override.Reddit.ClientID
	}
	if override.Reddit.ClientSecret != "" {
		base.Reddit.ClientSecret = override.Reddit.ClientSecret
	}
	if override.Reddit.UserAgent != "" {
		base.Reddit.UserAgent = override.Reddit.UserAgent
	}
	if override.Reddit.Username != "" {
		base.Reddit.Username = override.Reddit.Username
	}
	if override.Reddit.Password != "" {
		base.Reddit.Password = override.Reddit.Password
	}
	if override.Reddit.Subreddit != "" {
		base.Reddit.Subreddit = override.Reddit.Subreddit
	}

	if len(override.Stories) > 0 {
		base.Stories = override.Stories
	}

	if override.Settings.BotEnabled != nil {
		base.Settings.BotEnabled = override.Settings.BotEnabled
	}
	if override.Settings.WorkDir != "" {
		base.Settings.WorkDir = override.Settings.WorkDir
	}
	if override.Settings.Language != "" {
		base.Settings.Language = override.Settings.Language
	}

	if override.Mail.Sender != "" {
		base.Mail.Sender = override.Mail.Sender
	}
	if override.Mail.SMTPHost != "" {
		base.Mail.SMTPHost = override.Mail.SMTPHost
	}
	if override.Mail.SMTPPort != 0 {
		base.Mail.SMTPPort = override.Mail.SMTPPort
	}
	if override.Mail.Username != "" {
		base.Mail.Username = override.Mail.Username
	}
	if override.Mail.Password != "" {
		base.Mail.Password = override.Mail.Password
	}
	if override.Mail.Receiver != "" {
		base.Mail.Receiver = override.Mail.Receiver
	}
	if override.Mail.ErrorReceiver != "" {
		base.Mail.ErrorReceiver = override.Mail.ErrorReceiver
	}

	if override.Ledger.Dir != "" {
		base.Ledger.Dir = override.Ledger.Dir
	}
	if override.Ledger.MaxSizeMiB != 0 {
		base.Ledger.MaxSizeMiB = override.Ledger.MaxSizeMiB
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Reddit: RedditConfig{
			UserAgent: "GalacticScribe/1.0",
			Subreddit: "hfy",
		},
		Settings: SettingsConfig{
			WorkDir:  ".",
			Language: "en",
		},
		Mail: MailConfig{
			SMTPPort: 587,
		},
		Ledger: LedgerConfig{
			Dir:        "email_logs",
			MaxSizeMiB: 25,
		},
	}
}
