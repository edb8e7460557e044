package revisionRepo

import (
	"context"
	"fmt"

	"file-storage-service/internal/model/fileInfo"
	"file-storage-service/internal/repository"
	"file-storage-service/pkg/database/postgres"

	"github.com/google/uuid"
)

type RevisionRepository struct {
	conn postgres.DBTX
}

var _ repository.Revisions = (*RevisionRepository)(nil)

func New(db postgres.DBTX) *RevisionRepository {
	return &RevisionRepository{conn: db}
}

func (r *RevisionRepository) Append(ctx context.Context, rev *fileInfo.Revision) error {
	if !rev.Kind.Valid() {
		return fmt.Errorf("%w: %q", repository.ErrInvalidRevision, rev.Kind)
	}
	err := r.conn.QueryRow(ctx,
		`INSERT INTO file_revisions (file_id, owner, kind, actor, old_name, new_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		rev.FileID, rev.Owner, string(rev.Kind), rev.Actor, rev.OldName, rev.NewName, rev.CreatedAt).
		Scan(&rev.ID)
	if err != nil {
		return fmt.Errorf("failed to append revision: %w", err)
	}
	return nil
}

func (r *RevisionRepository) ListFor(ctx context.Context, fileID uuid.UUID) ([]*fileInfo.Revision, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT id, file_id, owner, kind, actor, old_name, new_name, created_at
		 FROM file_revisions
		 WHERE file_id = $1
		 ORDER BY created_at, id`,
		fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	defer rows.Close()

	revisions := make([]*fileInfo.Revision, 0)
	for rows.Next() {
		var (
			rev  fileInfo.Revision
			kind string
		)
		if err := rows.Scan(&rev.ID, &rev.FileID, &rev.Owner, &kind, &rev.Actor, &rev.OldName, &rev.NewName, &rev.CreatedAt); err != nil {
			return nil, err
		}
		rev.Kind = fileInfo.RevisionKind(kind)
		revisions = append(revisions, &rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return revisions, nil
}
