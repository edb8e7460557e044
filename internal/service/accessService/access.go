package accessService

import (
	"errors"

	"file-storage-service/internal/model/user"
	"file-storage-service/internal/service/fileService"
)

var ErrForbidden = errors.New("operation not permitted")

type Operation string

const (
	OpList    Operation = "list"
	OpRead    Operation = "read"
	OpHistory Operation = "history"
	OpCreate  Operation = "create"
	OpRename  Operation = "rename"
	OpDelete  Operation = "delete"
)

// Allowed reports whether role may perform op. Every role may read; only
// admins and moderators may change files.
func Allowed(role user.Role, op Operation) bool {
	switch op {
	case OpList, OpRead, OpHistory:
		return role == user.RoleAdmin || role == user.RoleModerator || role == user.RoleUser
	case OpCreate, OpRename, OpDelete:
		return role == user.RoleAdmin || role == user.RoleModerator
	}
	return false
}

type Kind int

const (
	KindOK Kind = iota
	KindNotFound
	KindBadRequest
	KindForbidden
	KindServerError
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindForbidden:
		return "forbidden"
	}
	return "server_error"
}

// Classify maps an error returned by AccessService to the kind an API layer
// reports. Partial failures are server errors even when caused by a conflict.
func Classify(err error) Kind {
	var partial *fileService.PartialFailureError
	switch {
	case err == nil:
		return KindOK
	case errors.As(err, &partial):
		return KindServerError
	case errors.Is(err, fileService.ErrNotFound):
		return KindNotFound
	case errors.Is(err, fileService.ErrConflict), errors.Is(err, fileService.ErrInvalidName):
		return KindBadRequest
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	}
	return KindServerError
}
