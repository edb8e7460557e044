// Package repository declares the metadata store used by the file service:
// file records, the append-only revision log, and transactions spanning both.
package repository

import (
	"context"
	"errors"
	"time"

	"file-storage-service/internal/model/fileInfo"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrNameTaken is returned when name is already used by another file whose
	// owner maps to the same owner key.
	ErrNameTaken = errors.New("file name already taken")
	// ErrStaleName is returned by a compare-and-set rename or delete whose
	// expected current name no longer matches the stored one.
	ErrStaleName       = errors.New("file name changed concurrently")
	ErrInvalidRevision = errors.New("unknown revision kind")
)

type Files interface {
	Create(ctx context.Context, file *fileInfo.File) error
	GetByID(ctx context.Context, id uuid.UUID) (*fileInfo.File, error)
	ListByOwner(ctx context.Context, owner string) ([]*fileInfo.File, error)
	// ExistsByName compares owners by owner key, the way object keys do.
	ExistsByName(ctx context.Context, owner, name string) (bool, error)
	// UpdateName renames id from oldName to newName only if the stored name
	// still equals oldName.
	UpdateName(ctx context.Context, id uuid.UUID, oldName, newName string, modifiedAt time.Time) error
	// Delete removes id only if its stored name still equals name.
	Delete(ctx context.Context, id uuid.UUID, name string) error
}

// Revisions is append-only; implementations expose no update or removal.
type Revisions interface {
	Append(ctx context.Context, rev *fileInfo.Revision) error
	// ListFor returns revisions oldest first, and an empty slice for ids
	// that never had any.
	ListFor(ctx context.Context, fileID uuid.UUID) ([]*fileInfo.Revision, error)
}

type Store interface {
	Files() Files
	Revisions() Revisions
	// WithinTx runs fn atomically: either every write fn makes is kept or none.
	WithinTx(ctx context.Context, fn func(files Files, revisions Revisions) error) error
}
