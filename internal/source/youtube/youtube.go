// Package youtube implements the YouTube search adapter.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/devpulse/pulse-collector/internal/collect"
)

const (
	sourceName = "youtube"

	// The search endpoint caps maxResults at 50.
	maxResultsCap = 50
)

// Config controls the YouTube adapter. APIKey is optional: without it the
// adapter yields no items, which is a normal configuration state.
type Config struct {
	BaseURL   string
	APIKey    string
	Query     string
	UserAgent string
}

// Adapter collects video metadata from the YouTube Data API search endpoint.
type Adapter struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates a YouTube Adapter.
func New(cfg Config, client *http.Client, logger *zap.Logger) *Adapter {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{cfg: cfg, client: client, logger: logger}
}

// Source returns the source identifier.
func (a *Adapter) Source() string { return sourceName }

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ChannelID    string `json:"channelId"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
	} `json:"snippet"`
}

// Collect searches for videos matching the configured query. With no API
// key configured it returns an empty slice and no error.
func (a *Adapter) Collect(ctx context.Context, limit int) ([]collect.Post, error) {
	if a.cfg.APIKey == "" {
		a.logger.Info("api key not configured, skipping", zap.String("source", sourceName))
		return nil, nil
	}

	maxResults := limit
	if maxResults > maxResultsCap {
		maxResults = maxResultsCap
	}
	params := url.Values{
		"part":       {"snippet"},
		"q":          {a.cfg.Query},
		"type":       {"video"},
		"maxResults": {strconv.Itoa(maxResults)},
		"key":        {a.cfg.APIKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if a.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", a.cfg.UserAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search videos: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search videos: unexpected status %s", resp.Status)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	posts := make([]collect.Post, 0, len(body.Items))
	for _, item := range body.Items {
		if len(posts) >= limit {
			break
		}
		post, ok := a.normalize(item)
		if !ok {
			a.logger.Warn("skipping malformed video",
				zap.String("source", sourceName),
				zap.String("video_id", item.ID.VideoID),
			)
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (a *Adapter) normalize(item searchItem) (collect.Post, bool) {
	if item.ID.VideoID == "" {
		return collect.Post{}, false
	}
	post := collect.Post{
		Source:     sourceName,
		SourceURL:  "https://www.youtube.com/watch?v=" + item.ID.VideoID,
		Title:      item.Snippet.Title,
		Content:    item.Snippet.Description,
		AuthorName: item.Snippet.ChannelTitle,
		Metadata:   map[string]any{},
	}
	if item.Snippet.ChannelID != "" {
		post.AuthorURL = "https://www.youtube.com/channel/" + item.Snippet.ChannelID
	}
	if item.Snippet.PublishedAt != "" {
		if ts, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			post.PublishedAt = &ts
		}
	}
	post.Normalize()
	return post, post.Valid()
}
