// Package devto implements the Dev.to articles adapter.
package devto

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/devpulse/pulse-collector/internal/collect"
)

const sourceName = "devto"

// Config controls the Dev.to adapter.
type Config struct {
	BaseURL   string
	Tag       string
	UserAgent string
}

// Adapter collects articles from the public Dev.to listing API.
type Adapter struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates a Dev.to Adapter.
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

type article struct {
	URL                    string   `json:"url"`
	Title                  string   `json:"title"`
	Description            string   `json:"description"`
	PublishedAt            string   `json:"published_at"`
	TagList                []string `json:"tag_list"`
	PositiveReactionsCount int      `json:"positive_reactions_count"`
	CommentsCount          int      `json:"comments_count"`
	User                   struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"user"`
}

// Collect fetches up to limit articles for the configured tag.
func (a *Adapter) Collect(ctx context.Context, limit int) ([]collect.Post, error) {
	endpoint := fmt.Sprintf("%s?tag=%s&per_page=%d",
		a.cfg.BaseURL, url.QueryEscape(a.cfg.Tag), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if a.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", a.cfg.UserAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch articles: unexpected status %s", resp.Status)
	}

	var articles []article
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}

	posts := make([]collect.Post, 0, len(articles))
	for _, art := range articles {
		if len(posts) >= limit {
			break
		}
		post, ok := a.normalize(art)
		if !ok {
			a.logger.Warn("skipping malformed article",
				zap.String("source", sourceName),
				zap.String("url", art.URL),
			)
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (a *Adapter) normalize(art article) (collect.Post, bool) {
	post := collect.Post{
		Source:     sourceName,
		SourceURL:  art.URL,
		Title:      art.Title,
		Content:    art.Description,
		AuthorName: art.User.Name,
		Tags:       art.TagList,
		Metadata: map[string]any{
			"positive_reactions_count": art.PositiveReactionsCount,
			"comments_count":           art.CommentsCount,
		},
	}
	if art.User.Username != "" {
		post.AuthorURL = "https://dev.to/" + art.User.Username
	}
	if art.PublishedAt != "" {
		if ts, err := time.Parse(time.RFC3339, art.PublishedAt); err == nil {
			post.PublishedAt = &ts
		} else {
			a.logger.Warn("unparseable published_at",
				zap.String("source", sourceName),
				zap.String("url", art.URL),
				zap.String("published_at", art.PublishedAt),
			)
		}
	}
	post.Normalize()
	if !post.Valid() {
		return collect.Post{}, false
	}
	return post, true
}
