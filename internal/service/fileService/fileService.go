// Package fileService keeps a file's metadata record, its revision log and
// its object-store blob consistent across create, rename, read and delete.
//
// Every mutation follows the same order: compute the key, act on the object
// store, then write metadata and the revision in one transaction. Metadata is
// never written before the remote operation it documents has succeeded.
package fileService

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"file-storage-service/internal/model/fileInfo"
	"file-storage-service/internal/objectStore"
	"file-storage-service/internal/repository"
	"file-storage-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultContentType = "application/octet-stream"

type FileService struct {
	store   repository.Store
	objects objectStore.ObjectStore
	metrics *Metrics
	now     func() time.Time
}

// New returns a FileService. metrics may be nil.
func New(store repository.Store, objects objectStore.ObjectStore, metrics *Metrics) *FileService {
	return &FileService{
		store:   store,
		objects: objects,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *FileService) lookup(ctx context.Context, id uuid.UUID) (*fileInfo.File, error) {
	file, err := s.store.Files().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return file, nil
}

// Create stores r as owner's file name and records a CREATE revision.
func (s *FileService) Create(ctx context.Context, owner, name string, r io.Reader, contentType string, size int64, actor string) (file *fileInfo.File, err error) {
	defer func() { s.metrics.record("create", err) }()

	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if objectStore.OwnerKey(owner) == "" {
		return nil, fmt.Errorf("%w: owner is empty", ErrInvalidName)
	}

	exists, err := s.store.Files().ExistsByName(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check file name: %w", err)
	}
	if exists {
		return nil, ErrConflict
	}

	if contentType == "" {
		contentType = DefaultContentType
	}
	key := objectStore.BuildKey(owner, name)
	counted := &countingReader{r: r}
	if err := s.objects.Put(ctx, key, counted, contentType, size); err != nil {
		return nil, remoteErr(err)
	}

	// The object is stored; a cancellation from here on must not lose its record.
	ctx = context.WithoutCancel(ctx)
	now := s.now()
	file = &fileInfo.File{
		ID:          uuid.New(),
		Owner:       owner,
		Name:        name,
		ContentType: contentType,
		Size:        counted.n,
		CreatedAt:   now,
		ModifiedAt:  now,
	}
	err = s.store.WithinTx(ctx, func(files repository.Files, revisions repository.Revisions) error {
		if err := files.Create(ctx, file); err != nil {
			return err
		}
		return revisions.Append(ctx, fileInfo.NewCreateRevision(file, actor, now))
	})
	if errors.Is(err, repository.ErrNameTaken) {
		logger.GetLogger(ctx).Warn("concurrent create overwrote object",
			zap.String("key", key), zap.String("owner", owner))
		return nil, ErrConflict
	}
	if err != nil {
		logger.GetLogger(ctx).Error("object stored without metadata",
			zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to record file: %w", err)
	}

	logger.GetLogger(ctx).Info("file created",
		zap.String("file_id", file.ID.String()), zap.String("key", key), zap.Int64("size", file.Size))
	return file, nil
}

// Get returns the metadata of id without touching the object store.
func (s *FileService) Get(ctx context.Context, id uuid.UUID) (*fileInfo.File, error) {
	return s.lookup(ctx, id)
}

func (s *FileService) List(ctx context.Context, owner string) ([]*fileInfo.File, error) {
	files, err := s.store.Files().ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// Read returns the metadata and content of id. The caller closes the body.
func (s *FileService) Read(ctx context.Context, id uuid.UUID) (*fileInfo.File, *objectStore.Object, error) {
	file, err := s.lookup(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	key := objectStore.BuildKey(file.Owner, file.Name)
	obj, err := s.objects.Get(ctx, key)
	if errors.Is(err, objectStore.ErrObjectNotFound) {
		logger.GetLogger(ctx).Error("file record has no object",
			zap.String("file_id", id.String()), zap.String("key", key))
		return nil, nil, fmt.Errorf("%w: object %q is missing", ErrNotFound, key)
	}
	if err != nil {
		return nil, nil, remoteErr(err)
	}
	return file, obj, nil
}

// History returns the revisions of id oldest first. It keeps working after
// the file is deleted.
func (s *FileService) History(ctx context.Context, id uuid.UUID) ([]*fileInfo.Revision, error) {
	revisions, err := s.store.Revisions().ListFor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	return revisions, nil
}

// Rename moves id to newName. Renaming to the current name is a no-op and
// records nothing.
func (s *FileService) Rename(ctx context.Context, id uuid.UUID, newName, actor string) (renamed *fileInfo.File, err error) {
	defer func() { s.metrics.record("rename", err) }()

	if err := ValidateName(newName); err != nil {
		return nil, err
	}
	file, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.Name == newName {
		return file, nil
	}

	taken, err := s.store.Files().ExistsByName(ctx, file.Owner, newName)
	if err != nil {
		return nil, fmt.Errorf("failed to check file name: %w", err)
	}
	if taken {
		return nil, ErrConflict
	}

	oldKey := objectStore.BuildKey(file.Owner, file.Name)
	newKey := objectStore.BuildKey(file.Owner, newName)

	if err := s.objects.Copy(ctx, oldKey, newKey); err != nil {
		if errors.Is(err, objectStore.ErrObjectNotFound) {
			return nil, s.vanishedSource(ctx, file, oldKey)
		}
		return nil, remoteErr(err)
	}

	if err := s.objects.Delete(ctx, oldKey); err != nil {
		return nil, s.partialFailure(ctx, oldKey, newKey, remoteErr(err))
	}

	ctx = context.WithoutCancel(ctx)
	now := s.now()
	err = s.store.WithinTx(ctx, func(files repository.Files, revisions repository.Revisions) error {
		if err := files.UpdateName(ctx, id, file.Name, newName, now); err != nil {
			return err
		}
		return revisions.Append(ctx, fileInfo.NewRenameRevision(file, file.Name, newName, actor, now))
	})
	switch {
	case errors.Is(err, repository.ErrStaleName):
		// A concurrent rename to the same target leaves nothing orphaned.
		if current, gerr := s.store.Files().GetByID(ctx, id); gerr == nil && current.Name == newName {
			return nil, ErrConflict
		}
		return nil, s.partialFailure(ctx, oldKey, newKey, ErrConflict)
	case errors.Is(err, repository.ErrNameTaken):
		// A file created under newName after the check; its object was overwritten by the copy.
		logger.GetLogger(ctx).Error("rename overwrote the object of another file",
			zap.String("file_id", id.String()), zap.String("new_key", newKey))
		return nil, &PartialFailureError{OldKey: oldKey, NewKey: newKey, NewKeyInUse: true, Err: ErrConflict}
	case err != nil:
		return nil, s.partialFailure(ctx, oldKey, newKey, fmt.Errorf("failed to record rename: %w", err))
	}

	renamed = new(fileInfo.File)
	*renamed = *file
	renamed.Name = newName
	renamed.ModifiedAt = now

	logger.GetLogger(ctx).Info("file renamed",
		zap.String("file_id", id.String()), zap.String("old_key", oldKey), zap.String("new_key", newKey))
	return renamed, nil
}

// vanishedSource decides what a missing rename source means: the record is
// gone, or another rename moved the object first.
func (s *FileService) vanishedSource(ctx context.Context, file *fileInfo.File, oldKey string) error {
	current, err := s.store.Files().GetByID(ctx, file.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}
	if current.Name == file.Name {
		logger.GetLogger(ctx).Warn("rename source missing while record is unchanged",
			zap.String("file_id", file.ID.String()), zap.String("key", oldKey))
	}
	return fmt.Errorf("%w: file was modified during rename", ErrConflict)
}

func (s *FileService) partialFailure(ctx context.Context, oldKey, newKey string, cause error) error {
	logger.GetLogger(ctx).Error("rename partially applied",
		zap.String("old_key", oldKey), zap.String("new_key", newKey), zap.Error(cause))
	return &PartialFailureError{OldKey: oldKey, NewKey: newKey, Err: cause}
}

// Delete removes the object of id, then its record, keeping the revisions.
// A second Delete of the same id returns ErrNotFound. When a rename commits
// in between, nothing is recorded and ErrConflict is returned; the caller may
// retry against the new name.
func (s *FileService) Delete(ctx context.Context, id uuid.UUID, actor string) (err error) {
	defer func() { s.metrics.record("delete", err) }()

	file, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}

	key := objectStore.BuildKey(file.Owner, file.Name)
	if err := s.objects.Delete(ctx, key); err != nil {
		return remoteErr(err)
	}

	ctx = context.WithoutCancel(ctx)
	now := s.now()
	err = s.store.WithinTx(ctx, func(files repository.Files, revisions repository.Revisions) error {
		if err := files.Delete(ctx, id, file.Name); err != nil {
			return err
		}
		return revisions.Append(ctx, fileInfo.NewDeleteRevision(file, actor, now))
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, repository.ErrStaleName) {
		logger.GetLogger(ctx).Warn("file renamed during delete",
			zap.String("file_id", id.String()), zap.String("key", key))
		return fmt.Errorf("%w: file was renamed during delete", ErrConflict)
	}
	if err != nil {
		logger.GetLogger(ctx).Error("object deleted but record kept",
			zap.String("file_id", id.String()), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to record deletion: %w", err)
	}

	logger.GetLogger(ctx).Info("file deleted", zap.String("file_id", id.String()), zap.String("key", key))
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
