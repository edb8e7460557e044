package pgStore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"file-storage-service/internal/model/fileInfo"
	"file-storage-service/internal/repository"
	"file-storage-service/internal/repository/pgStore"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WithinTx(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	file := &fileInfo.File{ID: id, Owner: "alice", Name: "a.txt"}

	t.Run("commits on success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		store := pgStore.New(mock)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO file_revisions").
			WithArgs(id, "alice", "DELETE", "alice", "a.txt", "", at).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectExec("DELETE FROM files").WithArgs(id, "a.txt").WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		err = store.WithinTx(ctx, func(files repository.Files, revisions repository.Revisions) error {
			if err := revisions.Append(ctx, fileInfo.NewDeleteRevision(file, "alice", at)); err != nil {
				return err
			}
			return files.Delete(ctx, id, "a.txt")
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		store := pgStore.New(mock)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE files SET name").
			WithArgs("b.txt", at, id, "a.txt").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectRollback()

		err = store.WithinTx(ctx, func(files repository.Files, _ repository.Revisions) error {
			return files.UpdateName(ctx, id, "a.txt", "b.txt", at)
		})
		assert.ErrorIs(t, err, repository.ErrStaleName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		store := pgStore.New(mock)

		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		called := false
		err = store.WithinTx(ctx, func(repository.Files, repository.Revisions) error {
			called = true
			return nil
		})
		assert.Error(t, err)
		assert.False(t, called)
	})
}
