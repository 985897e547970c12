package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/devpulse/pulse-collector/internal/collect"
)

// PostStore persists canonical posts with insert-or-skip semantics on the
// source URL natural key.
type PostStore struct {
	pool Pool
}

// NewPostStore constructs a PostStore over an existing pool.
func NewPostStore(pool Pool) (*PostStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &PostStore{pool: pool}, nil
}

const insertPostSQL = `
INSERT INTO posts (
	source,
	source_url,
	title,
	content,
	author_name,
	author_url,
	published_at,
	collected_at,
	tags,
	extra_metadata,
	analyzed
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,NOW(),$8,$9,FALSE
)
ON CONFLICT (source_url) DO NOTHING`

// SavePost inserts the post or skips it when a row with the same source
// URL already exists. The conflict path is the expected steady-state
// outcome once a source has been polled repeatedly; it is never an error.
// Each call is its own implicit transaction, so a failure here never rolls
// back sibling records of the same batch.
func (s *PostStore) SavePost(ctx context.Context, post collect.Post) (collect.PersistOutcome, error) {
	tagsJSON, err := json.Marshal(normalizeTags(post.Tags))
	if err != nil {
		return 0, fmt.Errorf("marshal tags: %w", err)
	}
	metaJSON, err := json.Marshal(normalizeMetadata(post.Metadata))
	if err != nil {
		return 0, fmt.Errorf("marshal metadata: %w", err)
	}

	tag, err := s.pool.Exec(ctx, insertPostSQL,
		post.Source,
		post.SourceURL,
		post.Title,
		nullable(post.Content),
		nullable(post.AuthorName),
		nullable(post.AuthorURL),
		post.PublishedAt,
		tagsJSON,
		metaJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return collect.OutcomeDuplicate, nil
	}
	return collect.OutcomeInserted, nil
}

// CountPosts returns the total number of stored posts.
func (s *PostStore) CountPosts(ctx context.Context) (int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT COUNT(*) FROM posts`)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	defer rows.Close()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, fmt.Errorf("scan post count: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func normalizeMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
