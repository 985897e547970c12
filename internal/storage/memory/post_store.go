// Package memory provides in-memory store implementations for tests and
// for running the collector without a database (dry-run mode).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/devpulse/pulse-collector/internal/collect"
)

// PostStore keeps posts in a map keyed by source URL.
type PostStore struct {
	mu    sync.Mutex
	posts map[string]collect.Post
	seq   int64
}

// NewPostStore creates an empty PostStore.
func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[string]collect.Post)}
}

// SavePost inserts the post or reports a duplicate on the source URL key.
func (s *PostStore) SavePost(_ context.Context, post collect.Post) (collect.PersistOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.SourceURL]; ok {
		return collect.OutcomeDuplicate, nil
	}
	s.seq++
	post.ID = s.seq
	post.CollectedAt = time.Now().UTC()
	s.posts[post.SourceURL] = post
	return collect.OutcomeInserted, nil
}

// CountPosts returns the number of stored posts.
func (s *PostStore) CountPosts(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.posts)), nil
}

// Get returns the stored post for a source URL.
func (s *PostStore) Get(sourceURL string) (collect.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[sourceURL]
	return post, ok
}
