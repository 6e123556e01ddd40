// Package reddit implements a source.Feed backed by the Reddit API. With
// credentials it uses OAuth client-credentials against oauth.reddit.com;
// without them it falls back to the anonymous old.reddit.com JSON listing.
package reddit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/memebuster/internal/logger"
	"github.com/timmy/memebuster/internal/source"
)

const (
	tokenURL     = "https://www.reddit.com/api/v1/access_token"
	oauthAPIBase = "https://oauth.reddit.com"
	anonAPIBase  = "https://old.reddit.com"

	// Tokens are issued for an hour; refresh a little early.
	tokenTTL = 50 * time.Minute
)

// imageHosts are hosts whose URLs are treated as direct images even without
// a recognized file extension.
var imageHosts = map[string]bool{
	"i.redd.it":       true,
	"i.imgur.com":     true,
	"preview.redd.it": true,
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// tokenCache holds the current OAuth token and its issue time.
type tokenCache struct {
	mu       sync.Mutex
	token    string
	issuedAt time.Time
}

// Config holds Reddit API credentials. All fields optional; the client works
// anonymously without them at lower rate limits.
type Config struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// Client fetches hot image posts from subreddits.
type Client struct {
	http      *resty.Client
	clientID  string
	secret    string
	userAgent string
	cache     tokenCache
	logger    *logger.Logger
}

// NewClient creates a Reddit client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "web:memebuster:v1.0.0"
	}

	http := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("User-Agent", userAgent)

	return &Client{
		http:      http,
		clientID:  cfg.ClientID,
		secret:    cfg.ClientSecret,
		userAgent: userAgent,
		logger:    log,
	}
}

// SourceID implements source.Feed.
func (c *Client) SourceID() string {
	return "reddit"
}

func (c *Client) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return c.logger
}

// accessToken returns a cached OAuth token, refreshing when expired. Returns
// an empty string when no credentials are configured.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.secret == "" {
		return "", nil
	}

	c.cache.mu.Lock()
	defer c.cache.mu.Unlock()

	if c.cache.token != "" && time.Since(c.cache.issuedAt) < tokenTTL {
		return c.cache.token, nil
	}

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.secret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&body).
		Post(tokenURL)
	if err != nil {
		return "", fmt.Errorf("reddit token request: %w", err)
	}
	if resp.StatusCode() != 200 || body.AccessToken == "" {
		return "", fmt.Errorf("reddit token request failed with status %d", resp.StatusCode())
	}

	c.cache.token = body.AccessToken
	c.cache.issuedAt = time.Now()
	c.log(ctx).Debug("Refreshed Reddit OAuth token")

	return c.cache.token, nil
}

// listing mirrors the Reddit JSON listing shape.
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Title      string  `json:"title"`
				URL        string  `json:"url"`
				Permalink  string  `json:"permalink"`
				Score      int     `json:"score"`
				Subreddit  string  `json:"subreddit"`
				Author     string  `json:"author"`
				CreatedUTC float64 `json:"created_utc"`
				Over18     bool    `json:"over_18"`
				IsSelf     bool    `json:"is_self"`
				Stickied   bool    `json:"stickied"`
				PostHint   string  `json:"post_hint"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchHot implements source.Feed. Non-image, self, and stickied posts are
// filtered out before the limit applies upstream.
func (c *Client) FetchHot(ctx context.Context, subreddit string, limit int) ([]source.Post, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		c.log(ctx).WithError(err).Warn("Reddit OAuth failed, falling back to anonymous API")
		token = ""
	}

	base := anonAPIBase
	req := c.http.R().SetContext(ctx)
	if token != "" {
		base = oauthAPIBase
		req.SetHeader("Authorization", "Bearer "+token)
	}

	var result listing
	resp, err := req.
		SetQueryParams(map[string]string{
			"limit":    fmt.Sprintf("%d", limit),
			"raw_json": "1",
		}).
		SetResult(&result).
		Get(fmt.Sprintf("%s/r/%s/hot.json", base, subreddit))
	if err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", subreddit, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch r/%s: status %d", subreddit, resp.StatusCode())
	}

	posts := make([]source.Post, 0, len(result.Data.Children))
	for _, child := range result.Data.Children {
		d := child.Data
		if d.IsSelf || d.Stickied || d.Over18 {
			continue
		}
		if !IsImageURL(d.URL) {
			continue
		}
		posts = append(posts, source.Post{
			ID:        d.ID,
			Title:     d.Title,
			URL:       d.URL,
			Permalink: "https://www.reddit.com" + d.Permalink,
			Score:     d.Score,
			Subreddit: d.Subreddit,
			Author:    d.Author,
			CreatedAt: int64(d.CreatedUTC),
		})
	}

	c.log(ctx).WithFields(logger.Fields{
		logger.FieldSubreddit: subreddit,
		logger.FieldCount:     len(posts),
	}).Info("Fetched hot image posts")

	return posts, nil
}

// IsImageURL reports whether a URL points at a directly-fetchable image,
// either by file extension or by known image host.
func IsImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if imageHosts[u.Host] {
		return true
	}
	lower := strings.ToLower(u.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
