// Package accessService is the entry point of the file API. It checks the
// caller's role and ownership before handing requests to fileService.
package accessService

import (
	"context"
	"io"

	"file-storage-service/internal/model/fileInfo"
	"file-storage-service/internal/model/user"
	"file-storage-service/internal/objectStore"
	"file-storage-service/internal/service/fileService"
	"file-storage-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Files interface {
	Create(ctx context.Context, owner, name string, r io.Reader, contentType string, size int64, actor string) (*fileInfo.File, error)
	Get(ctx context.Context, id uuid.UUID) (*fileInfo.File, error)
	List(ctx context.Context, owner string) ([]*fileInfo.File, error)
	Read(ctx context.Context, id uuid.UUID) (*fileInfo.File, *objectStore.Object, error)
	History(ctx context.Context, id uuid.UUID) ([]*fileInfo.Revision, error)
	Rename(ctx context.Context, id uuid.UUID, newName, actor string) (*fileInfo.File, error)
	Delete(ctx context.Context, id uuid.UUID, actor string) error
}

var _ Files = (*fileService.FileService)(nil)

type AccessService struct {
	files Files
}

func New(files Files) *AccessService {
	return &AccessService{files: files}
}

func authorize(ctx context.Context, requester user.Principal, op Operation) error {
	if Allowed(requester.Role, op) {
		return nil
	}
	logger.GetLogger(ctx).Warn("operation denied",
		zap.String("user", requester.Name), zap.String("role", string(requester.Role)), zap.String("operation", string(op)))
	return ErrForbidden
}

// owns hides files of other owners from everyone but admins.
func owns(requester user.Principal, file *fileInfo.File) bool {
	return requester.IsAdmin() || file.Owner == requester.Name
}

func (s *AccessService) owned(ctx context.Context, requester user.Principal, id uuid.UUID) (*fileInfo.File, error) {
	file, err := s.files.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !owns(requester, file) {
		return nil, fileService.ErrNotFound
	}
	return file, nil
}

// ListFiles lists files of owner, or of the requester when owner is empty.
// Only admins may list another user's files.
func (s *AccessService) ListFiles(ctx context.Context, requester user.Principal, owner string) ([]*fileInfo.File, error) {
	if err := authorize(ctx, requester, OpList); err != nil {
		return nil, err
	}
	if owner == "" {
		owner = requester.Name
	}
	if owner != requester.Name && !requester.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.files.List(ctx, owner)
}

func (s *AccessService) GetFile(ctx context.Context, requester user.Principal, id uuid.UUID) (*fileInfo.File, error) {
	if err := authorize(ctx, requester, OpRead); err != nil {
		return nil, err
	}
	return s.owned(ctx, requester, id)
}

// OpenFileContent returns the file and its content; the caller closes the body.
func (s *AccessService) OpenFileContent(ctx context.Context, requester user.Principal, id uuid.UUID) (*fileInfo.File, *objectStore.Object, error) {
	if err := authorize(ctx, requester, OpRead); err != nil {
		return nil, nil, err
	}
	if _, err := s.owned(ctx, requester, id); err != nil {
		return nil, nil, err
	}
	return s.files.Read(ctx, id)
}

// ListHistory returns an empty list for ids whose revisions belong to
// someone else, the same as for ids that never existed.
func (s *AccessService) ListHistory(ctx context.Context, requester user.Principal, id uuid.UUID) ([]*fileInfo.Revision, error) {
	if err := authorize(ctx, requester, OpHistory); err != nil {
		return nil, err
	}
	revisions, err := s.files.History(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(revisions) > 0 && !requester.IsAdmin() && revisions[0].Owner != requester.Name {
		return []*fileInfo.Revision{}, nil
	}
	return revisions, nil
}

// CreateFile stores a file owned by the requester.
func (s *AccessService) CreateFile(ctx context.Context, requester user.Principal, name string, r io.Reader, contentType string, size int64) (*fileInfo.File, error) {
	if err := authorize(ctx, requester, OpCreate); err != nil {
		return nil, err
	}
	return s.files.Create(ctx, requester.Name, name, r, contentType, size, requester.Name)
}

func (s *AccessService) RenameFile(ctx context.Context, requester user.Principal, id uuid.UUID, newName string) (*fileInfo.File, error) {
	if err := authorize(ctx, requester, OpRename); err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, requester, id); err != nil {
		return nil, err
	}
	return s.files.Rename(ctx, id, newName, requester.Name)
}

func (s *AccessService) DeleteFile(ctx context.Context, requester user.Principal, id uuid.UUID) error {
	if err := authorize(ctx, requester, OpDelete); err != nil {
		return err
	}
	if _, err := s.owned(ctx, requester, id); err != nil {
		return err
	}
	return s.files.Delete(ctx, id, requester.Name)
}
