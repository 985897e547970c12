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

func TestRecordRunInsertsAuditRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStore(mock)
	require.NoError(t, err)

	at := time.Unix(1700000000, 0).UTC()
	run := collect.Run{
		RunID:       "6f1e0c9a-0000-0000-0000-000000000000",
		Source:      "devto",
		CollectedAt: at,
		PostsFound:  3,
		PostsNew:    2,
		Status:      collect.StatusSucceeded,
	}

	mock.ExpectExec("INSERT INTO collection_runs").
		WithArgs(
			run.RunID,
			"devto",
			at,
			3,
			2,
			"succeeded",
			(*string)(nil),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.RecordRun(context.Background(), run))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRunPersistsErrorMessage(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStore(mock)
	require.NoError(t, err)

	at := time.Unix(1700000000, 0).UTC()
	run := collect.Run{
		RunID:        "run-2",
		Source:       "youtube",
		CollectedAt:  at,
		Status:       collect.StatusFailed,
		ErrorMessage: "context deadline exceeded",
	}

	mock.ExpectExec("INSERT INTO collection_runs").
		WithArgs(
			"run-2",
			"youtube",
			at,
			0,
			0,
			"failed",
			strPtr("context deadline exceeded"),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.RecordRun(context.Background(), run))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRunStorageErrorPropagates(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStore(mock)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO collection_runs").
		WillReturnError(errors.New("relation does not exist"))

	err = store.RecordRun(context.Background(), collect.Run{Source: "devto"})
	require.Error(t, err)
}

func TestListRunsScansRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStore(mock)
	require.NoError(t, err)

	at := time.Unix(1700000000, 0).UTC()
	rows := pgxmock.NewRows([]string{
		"id", "run_id", "source", "collected_at", "posts_found", "posts_new", "status", "error_message",
	}).
		AddRow(int64(2), "run-b", "github", at, 5, 4, "partial", "one insert failed").
		AddRow(int64(1), "run-a", "devto", at.Add(-time.Hour), 3, 3, "succeeded", "")

	mock.ExpectQuery("SELECT .+ FROM collection_runs").
		WithArgs(10).
		WillReturnRows(rows)

	runs, err := store.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, collect.StatusPartial, runs[0].Status)
	require.Equal(t, "one insert failed", runs[0].ErrorMessage)
	require.Equal(t, "devto", runs[1].Source)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRunsDefaultsLimit(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStore(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM collection_runs").
		WithArgs(50).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "run_id", "source", "collected_at", "posts_found", "posts_new", "status", "error_message",
		}))

	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, runs)
	require.NoError(t, mock.ExpectationsWereMet())
}
