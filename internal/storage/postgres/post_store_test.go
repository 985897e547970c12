package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/devpulse/pulse-collector/internal/collect"
)

func strPtr(s string) *string { return &s }

func TestSavePostInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostStore(mock)
	require.NoError(t, err)

	published := time.Unix(1700000000, 0).UTC()
	post := collect.Post{
		Source:      "devto",
		SourceURL:   "https://dev.to/alice/post",
		Title:       "A Post",
		Content:     "body",
		AuthorName:  "Alice",
		AuthorURL:   "https://dev.to/alice",
		PublishedAt: &published,
		Tags:        []string{"python"},
		Metadata:    map[string]any{"stars": 1},
	}

	mock.ExpectExec("INSERT INTO posts").
		WithArgs(
			"devto",
			"https://dev.to/alice/post",
			"A Post",
			strPtr("body"),
			strPtr("Alice"),
			strPtr("https://dev.to/alice"),
			&published,
			[]byte(`["python"]`),
			[]byte(`{"stars":1}`),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	outcome, err := store.SavePost(context.Background(), post)
	require.NoError(t, err)
	require.Equal(t, collect.OutcomeInserted, outcome)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePostDuplicateIsNotAnError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostStore(mock)
	require.NoError(t, err)

	post := collect.Post{Source: "devto", SourceURL: "https://dev.to/alice/post", Title: "A Post"}

	// ON CONFLICT DO NOTHING reports zero affected rows for the skip.
	mock.ExpectExec("INSERT INTO posts").
		WithArgs(
			"devto",
			"https://dev.to/alice/post",
			"A Post",
			(*string)(nil),
			(*string)(nil),
			(*string)(nil),
			(*time.Time)(nil),
			[]byte(`[]`),
			[]byte(`{}`),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	outcome, err := store.SavePost(context.Background(), post)
	require.NoError(t, err)
	require.Equal(t, collect.OutcomeDuplicate, outcome)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePostStorageErrorPropagates(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostStore(mock)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO posts").
		WithArgs(
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
		).
		WillReturnError(errors.New("connection reset"))

	_, err = store.SavePost(context.Background(), collect.Post{
		Source: "devto", SourceURL: "https://dev.to/x", Title: "x",
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountPosts(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostStore(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

	count, err := store.CountPosts(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(42), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostStoreRequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewPostStore(nil)
	require.Error(t, err)
}
