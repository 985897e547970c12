// Package github implements the GitHub repository search adapter.
package github

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
	sourceName = "github"
	maxTopics  = 5
)

// Config controls the GitHub adapter. Token is optional: without it
// requests run against the public, unauthenticated rate limits.
type Config struct {
	BaseURL   string
	Token     string
	Query     string
	UserAgent string
}

// Adapter collects repositories from the GitHub search API.
type Adapter struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates a GitHub Adapter.
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
	Items []repository `json:"items"`
}

type repository struct {
	Name        string   `json:"name"`
	HTMLURL     string   `json:"html_url"`
	Description string   `json:"description"`
	CreatedAt   string   `json:"created_at"`
	Topics      []string `json:"topics"`
	Stars       int      `json:"stargazers_count"`
	Forks       int      `json:"forks_count"`
	Owner       struct {
		Login   string `json:"login"`
		HTMLURL string `json:"html_url"`
	} `json:"owner"`
}

// Collect searches repositories matching the configured query.
func (a *Adapter) Collect(ctx context.Context, limit int) ([]collect.Post, error) {
	params := url.Values{
		"q":        {a.cfg.Query},
		"sort":     {"updated"},
		"per_page": {strconv.Itoa(limit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if a.cfg.Token != "" {
		req.Header.Set("Authorization", "token "+a.cfg.Token)
	}
	if a.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", a.cfg.UserAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search repositories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search repositories: unexpected status %s", resp.Status)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	posts := make([]collect.Post, 0, len(body.Items))
	for _, repo := range body.Items {
		if len(posts) >= limit {
			break
		}
		post, ok := a.normalize(repo)
		if !ok {
			a.logger.Warn("skipping malformed repository",
				zap.String("source", sourceName),
				zap.String("url", repo.HTMLURL),
			)
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (a *Adapter) normalize(repo repository) (collect.Post, bool) {
	topics := repo.Topics
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}
	post := collect.Post{
		Source:     sourceName,
		SourceURL:  repo.HTMLURL,
		Title:      repo.Name,
		Content:    repo.Description,
		AuthorName: repo.Owner.Login,
		AuthorURL:  repo.Owner.HTMLURL,
		Tags:       topics,
		Metadata: map[string]any{
			"stars": repo.Stars,
			"forks": repo.Forks,
		},
	}
	if repo.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, repo.CreatedAt); err == nil {
			post.PublishedAt = &ts
		}
	}
	post.Normalize()
	return post, post.Valid()
}
