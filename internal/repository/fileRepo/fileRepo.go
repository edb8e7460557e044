package fileRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"file-storage-service/internal/model/fileInfo"
	"file-storage-service/internal/objectStore"
	"file-storage-service/internal/repository"
	"file-storage-service/pkg/database/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type FileRepository struct {
	conn postgres.DBTX
}

var _ repository.Files = (*FileRepository)(nil)

func New(db postgres.DBTX) *FileRepository {
	return &FileRepository{conn: db}
}

func (r *FileRepository) Create(ctx context.Context, file *fileInfo.File) error {
	_, err := r.conn.Exec(ctx,
		`INSERT INTO files (id, owner, owner_key, name, content_type, size, created_at, modified_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		file.ID, file.Owner, objectStore.OwnerKey(file.Owner), file.Name, file.ContentType, file.Size, file.CreatedAt, file.ModifiedAt)
	if isUniqueViolation(err) {
		return repository.ErrNameTaken
	}
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, fileID uuid.UUID) (*fileInfo.File, error) {
	var file fileInfo.File
	err := r.conn.QueryRow(ctx,
		`SELECT id, owner, name, content_type, size, created_at, modified_at
		 FROM files WHERE id = $1`, fileID).
		Scan(&file.ID, &file.Owner, &file.Name, &file.ContentType, &file.Size, &file.CreatedAt, &file.ModifiedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return &file, nil
}

func (r *FileRepository) ListByOwner(ctx context.Context, owner string) ([]*fileInfo.File, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT id, owner, name, content_type, size, created_at, modified_at
		 FROM files WHERE owner = $1
		 ORDER BY name`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	files := make([]*fileInfo.File, 0)
	for rows.Next() {
		var file fileInfo.File
		if err := rows.Scan(
			&file.ID, &file.Owner, &file.Name, &file.ContentType, &file.Size, &file.CreatedAt, &file.ModifiedAt,
		); err != nil {
			return nil, err
		}
		files = append(files, &file)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

func (r *FileRepository) ExistsByName(ctx context.Context, owner, name string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM files WHERE owner_key = $1 AND name = $2)",
		objectStore.OwnerKey(owner), name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check file name: %w", err)
	}
	return exists, nil
}

func (r *FileRepository) UpdateName(ctx context.Context, fileID uuid.UUID, oldName, newName string, modifiedAt time.Time) error {
	tag, err := r.conn.Exec(ctx,
		"UPDATE files SET name = $1, modified_at = $2 WHERE id = $3 AND name = $4",
		newName, modifiedAt, fileID, oldName)
	if isUniqueViolation(err) {
		return repository.ErrNameTaken
	}
	if err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrStaleName
	}
	return nil
}

func (r *FileRepository) Delete(ctx context.Context, fileID uuid.UUID, name string) error {
	tag, err := r.conn.Exec(ctx, "DELETE FROM files WHERE id = $1 AND name = $2", fileID, name)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM files WHERE id = $1)", fileID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check file: %w", err)
	}
	if exists {
		return repository.ErrStaleName
	}
	return repository.ErrNotFound
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == postgres.UniqueViolation
}
