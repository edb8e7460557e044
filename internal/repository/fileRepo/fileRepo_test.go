package fileRepo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"file-storage-service/internal/model/fileInfo"
	"file-storage-service/internal/repository"
	"file-storage-service/internal/repository/fileRepo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fileColumns = []string{"id", "owner", "name", "content_type", "size", "created_at", "modified_at"}

func newRepo(t *testing.T) (*fileRepo.FileRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return fileRepo.New(mock), mock
}

func sampleFile() *fileInfo.File {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &fileInfo.File{
		ID:          uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2"),
		Owner:       "alice",
		Name:        "a.txt",
		ContentType: "text/plain",
		Size:        5,
		CreatedAt:   now,
		ModifiedAt:  now,
	}
}

func TestFileRepository_Create(t *testing.T) {
	ctx := context.Background()
	file := sampleFile()
	file.Owner = "alice smith"

	t.Run("success", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec("INSERT INTO files").
			WithArgs(file.ID, file.Owner, "alicesmith", file.Name, file.ContentType, file.Size, file.CreatedAt, file.ModifiedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, repo.Create(ctx, file))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec("INSERT INTO files").
			WithArgs(file.ID, file.Owner, "alicesmith", file.Name, file.ContentType, file.Size, file.CreatedAt, file.ModifiedAt).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "files_owner_key_name_key"})

		assert.ErrorIs(t, repo.Create(ctx, file), repository.ErrNameTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other error", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec("INSERT INTO files").
			WithArgs(file.ID, file.Owner, "alicesmith", file.Name, file.ContentType, file.Size, file.CreatedAt, file.ModifiedAt).
			WillReturnError(errors.New("connection reset"))

		err := repo.Create(ctx, file)
		assert.Error(t, err)
		assert.False(t, errors.Is(err, repository.ErrNameTaken))
	})
}

func TestFileRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	file := sampleFile()

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery("SELECT id, owner, name, content_type, size, created_at, modified_at FROM files WHERE id").
			WithArgs(file.ID).
			WillReturnRows(pgxmock.NewRows(fileColumns).
				AddRow(file.ID, file.Owner, file.Name, file.ContentType, file.Size, file.CreatedAt, file.ModifiedAt))

		got, err := repo.GetByID(ctx, file.ID)
		require.NoError(t, err)
		assert.Equal(t, file, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery("FROM files WHERE id").
			WithArgs(file.ID).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(ctx, file.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestFileRepository_ListByOwner(t *testing.T) {
	repo, mock := newRepo(t)
	file := sampleFile()
	other := sampleFile()
	other.ID = uuid.New()
	other.Name = "b.txt"

	mock.ExpectQuery("FROM files WHERE owner").
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows(fileColumns).
			AddRow(file.ID, file.Owner, file.Name, file.ContentType, file.Size, file.CreatedAt, file.ModifiedAt).
			AddRow(other.ID, other.Owner, other.Name, other.ContentType, other.Size, other.CreatedAt, other.ModifiedAt))

	files, err := repo.ListByOwner(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.txt", files[0].Name)
	assert.Equal(t, "b.txt", files[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepository_ExistsByName(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM files WHERE owner_key").
		WithArgs("alicesmith", "a.txt").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByName(context.Background(), "alice smith", "a.txt")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepository_UpdateName(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	at := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec("UPDATE files SET name").
			WithArgs("b.txt", at, id, "a.txt").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.UpdateName(ctx, id, "a.txt", "b.txt", at))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale name", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec("UPDATE files SET name").
			WithArgs("b.txt", at, id, "a.txt").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, repo.UpdateName(ctx, id, "a.txt", "b.txt", at), repository.ErrStaleName)
	})

	t.Run("name taken", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec("UPDATE files SET name").
			WithArgs("b.txt", at, id, "a.txt").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		assert.ErrorIs(t, repo.UpdateName(ctx, id, "a.txt", "b.txt", at), repository.ErrNameTaken)
	})
}

func TestFileRepository_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec("DELETE FROM files WHERE id = \\$1 AND name = \\$2").
			WithArgs(id, "a.txt").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		assert.NoError(t, repo.Delete(ctx, id, "a.txt"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("renamed meanwhile", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec("DELETE FROM files").
			WithArgs(id, "a.txt").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM files WHERE id").
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		assert.ErrorIs(t, repo.Delete(ctx, id, "a.txt"), repository.ErrStaleName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already gone", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec("DELETE FROM files").
			WithArgs(id, "a.txt").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		assert.ErrorIs(t, repo.Delete(ctx, id, "a.txt"), repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
