// Package feed implements the RSS/Atom feed adapter on top of gofeed.
package feed

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/devpulse/pulse-collector/internal/collect"
)

const maxTags = 5

// Config controls the feed adapter.
type Config struct {
	// Name is the source identifier stamped on collected posts,
	// e.g. "medium" for a Medium tag feed.
	Name      string
	URL       string
	UserAgent string
}

// Adapter collects items from a single RSS or Atom feed.
type Adapter struct {
	cfg    Config
	parser *gofeed.Parser
	logger *zap.Logger
}

// New creates a feed Adapter.
func New(cfg Config, client *http.Client, logger *zap.Logger) *Adapter {
	parser := gofeed.NewParser()
	if client != nil {
		parser.Client = client
	}
	if cfg.UserAgent != "" {
		parser.UserAgent = cfg.UserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{cfg: cfg, parser: parser, logger: logger}
}

// Source returns the source identifier.
func (a *Adapter) Source() string { return a.cfg.Name }

// Collect fetches and parses the feed, returning at most limit items.
func (a *Adapter) Collect(ctx context.Context, limit int) ([]collect.Post, error) {
	parsed, err := a.parser.ParseURLWithContext(a.cfg.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", a.cfg.URL, err)
	}

	posts := make([]collect.Post, 0, limit)
	for _, item := range parsed.Items {
		if len(posts) >= limit {
			break
		}
		post, ok := a.normalize(item)
		if !ok {
			a.logger.Warn("skipping malformed feed item",
				zap.String("source", a.cfg.Name),
				zap.String("link", item.Link),
			)
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (a *Adapter) normalize(item *gofeed.Item) (collect.Post, bool) {
	post := collect.Post{
		Source:    a.cfg.Name,
		SourceURL: item.Link,
		Title:     item.Title,
		Content:   itemText(item),
		Tags:      itemTags(item),
		Metadata:  map[string]any{},
	}
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		post.AuthorName = item.Authors[0].Name
	}
	switch {
	case item.PublishedParsed != nil:
		ts := item.PublishedParsed.UTC()
		post.PublishedAt = &ts
	case item.UpdatedParsed != nil:
		ts := item.UpdatedParsed.UTC()
		post.PublishedAt = &ts
	}
	post.Normalize()
	if !post.Valid() {
		return collect.Post{}, false
	}
	return post, true
}

// itemText returns the richest available text for an item. Content (full
// body) is preferred over Description (short excerpt).
func itemText(item *gofeed.Item) string {
	if item.Content != "" {
		return item.Content
	}
	return item.Description
}

func itemTags(item *gofeed.Item) []string {
	if len(item.Categories) == 0 {
		return nil
	}
	tags := item.Categories
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return tags
}
