// Package reddit implements ports.ChapterSource against the platform's
// read-only submission API using a script-type OAuth grant.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"GalacticScribe/internal/config"
	"GalacticScribe/internal/domain"
	"GalacticScribe/internal/ports"
)

const (
	defaultAuthURL = "https://www.reddit.com/api/v1/access_token"
	defaultAPIURL  = "https://oauth.reddit.com"
	pageLimit      = 100

	// Tokens are refreshed slightly before the platform expires them.
	tokenExpiryMargin = time.Minute
)

// Client fetches an author's submissions and reduces them to the chapters of
// one story: forum-filtered, fragment-matched, deduplicated by title with the
// newest post winning, and sorted ascending by creation time.
type Client struct {
	cfg    config.RedditConfig
	client *http.Client
	logger *slog.Logger

	authURL string
	apiURL  string

	token       string
	tokenExpiry time.Time
}

var _ ports.ChapterSource = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets sane timeouts.
func NewClient(cfg config.RedditConfig, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		cfg:     cfg,
		client:  client,
		logger:  logger,
		authURL: defaultAuthURL,
		apiURL:  defaultAPIURL,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error"`
}

type listingEnvelope struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data submissionData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// submissionData is the subset of the platform's post payload this system
// reads. Fields are required by contract; dynamic access is deliberately not
// modeled.
type submissionData struct {
	Title        string  `json:"title"`
	CreatedUTC   float64 `json:"created_utc"`
	SelftextHTML string  `json:"selftext_html"`
	Subreddit    string  `json:"subreddit"`
	Name         string  `json:"name"`
}

// FetchStory returns all of the author's posts in the configured forum whose
// title contains fragment (case-insensitive). Errors propagate unretried;
// the orchestrator's run wrapper owns retries.
func (c *Client) FetchStory(ctx context.Context, author, fragment string) ([]domain.ChapterSubmission, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	wantForum := strings.ToLower(c.cfg.Subreddit)
	wantFragment := strings.ToLower(fragment)

	var matched []domain.ChapterSubmission
	after := ""
	for {
		page, err := c.fetchPage(ctx, token, author, after)
		if err != nil {
			return nil, fmt.Errorf("list submissions for %s: %w", author, err)
		}

		for _, child := range page.Data.Children {
			sub := child.Data
			if strings.ToLower(sub.Subreddit) != wantForum {
				continue
			}
			if !strings.Contains(strings.ToLower(sub.Title), wantFragment) {
				continue
			}
			matched = append(matched, domain.ChapterSubmission{
				Title:     sub.Title,
				CreatedAt: time.Unix(int64(sub.CreatedUTC), 0).UTC(),
				HTMLBody:  sub.SelftextHTML,
				Forum:     sub.Subreddit,
			})
		}

		if page.Data.After == "" {
			break
		}
		after = page.Data.After
	}

	chapters := collapseByTitle(matched)
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].CreatedAt.Before(chapters[j].CreatedAt)
	})

	c.debug("fetched story", "author", author, "fragment", fragment,
		"matched", len(matched), "chapters", len(chapters))
	return chapters, nil
}

// collapseByTitle keeps at most one submission per distinct title, retaining
// the one with the greater creation timestamp.
func collapseByTitle(subs []domain.ChapterSubmission) []domain.ChapterSubmission {
	byTitle := make(map[string]domain.ChapterSubmission, len(subs))
	order := make([]string, 0, len(subs))

	for _, sub := range subs {
		prev, seen := byTitle[sub.Title]
		if !seen {
			byTitle[sub.Title] = sub
			order = append(order, sub.Title)
			continue
		}
		if sub.CreatedAt.After(prev.CreatedAt) {
			byTitle[sub.Title] = sub
		}
	}

	out := make([]domain.ChapterSubmission, 0, len(order))
	for _, title := range order {
		out = append(out, byTitle[title])
	}
	return out
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.cfg.Username)
	form.Set("password", c.cfg.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("token endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if token.Error != "" {
		return "", fmt.Errorf("token endpoint rejected credentials: %s", token.Error)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty access token")
	}

	c.token = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenExpiryMargin)
	return c.token, nil
}

func (c *Client) fetchPage(ctx context.Context, token, author, after string) (*listingEnvelope, error) {
	pageURL, err := buildListingURL(c.apiURL, author, after)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+token)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing endpoint returned %s", resp.Status)
	}

	var page listingEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return &page, nil
}

func buildListingURL(base, author, after string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid api url %s: %w", base, err)
	}
	parsed = parsed.JoinPath("user", author, "submitted")

	query := parsed.Query()
	query.Set("limit", strconv.Itoa(pageLimit))
	query.Set("raw_json", "1")
	if after != "" {
		query.Set("after", after)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
