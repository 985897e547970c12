// Package collect defines core types shared across subsystems.
package collect

import "time"

// RunStatus is the terminal state recorded for one source in one run.
type RunStatus string

// Run status values persisted in the collection_runs table.
const (
	StatusSucceeded RunStatus = "succeeded"
	StatusPartial   RunStatus = "partial"
	StatusFailed    RunStatus = "failed"
)

// Column limits enforced at normalization time. SourceURL is the natural
// key and is never truncated; an item whose URL exceeds the column limit
// is treated as malformed and skipped.
const (
	MaxSourceLen     = 50
	MaxSourceURLLen  = 2048
	MaxTitleLen      = 512
	MaxContentLen    = 1000
	MaxAuthorNameLen = 255
	MaxErrorLen      = 500
)

// Post is the canonical record every adapter produces. Source and
// SourceURL are mandatory; everything else degrades to its zero value
// when the upstream item lacks it.
type Post struct {
	ID          int64          `json:"id"`
	Source      string         `json:"source"`
	SourceURL   string         `json:"source_url"`
	Title       string         `json:"title"`
	Content     string         `json:"content,omitempty"`
	AuthorName  string         `json:"author_name,omitempty"`
	AuthorURL   string         `json:"author_url,omitempty"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	CollectedAt time.Time      `json:"collected_at"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Analyzed    bool           `json:"analyzed"`
}

// Normalize clamps free-text fields to their column limits so over-long
// upstream values are stored truncated rather than rejected.
func (p *Post) Normalize() {
	p.Title = Truncate(p.Title, MaxTitleLen)
	p.Content = Truncate(p.Content, MaxContentLen)
	p.AuthorName = Truncate(p.AuthorName, MaxAuthorNameLen)
}

// Valid reports whether the post carries the fields persistence requires.
func (p *Post) Valid() bool {
	return p.Source != "" && len(p.Source) <= MaxSourceLen &&
		p.SourceURL != "" && len(p.SourceURL) <= MaxSourceURLLen
}

// Truncate clamps s to at most limit bytes on a rune boundary.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	for limit > 0 && s[limit]&0xC0 == 0x80 {
		limit--
	}
	return s[:limit]
}

// Run is the append-only audit row written once per source per run.
type Run struct {
	ID           int64     `json:"id"`
	RunID        string    `json:"run_id"`
	Source       string    `json:"source"`
	CollectedAt  time.Time `json:"collected_at"`
	PostsFound   int       `json:"posts_found"`
	PostsNew     int       `json:"posts_new"`
	Status       RunStatus `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// Counters tracks per-source tallies while a batch is processed.
type Counters struct {
	Found      int `json:"posts_found"`
	New        int `json:"posts_new"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}

// Report is the per-source outcome returned by an orchestrator run.
type Report struct {
	Source   string        `json:"source"`
	Counters Counters      `json:"counters"`
	Status   RunStatus     `json:"status"`
	Err      string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}
