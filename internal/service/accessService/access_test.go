package accessService_test

import (
	"errors"
	"fmt"
	"testing"

	"file-storage-service/internal/model/user"
	"file-storage-service/internal/service/accessService"
	"file-storage-service/internal/service/fileService"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	reads := []accessService.Operation{accessService.OpList, accessService.OpRead, accessService.OpHistory}
	writes := []accessService.Operation{accessService.OpCreate, accessService.OpRename, accessService.OpDelete}

	for _, role := range []user.Role{user.RoleAdmin, user.RoleModerator, user.RoleUser} {
		for _, op := range reads {
			assert.True(t, accessService.Allowed(role, op), "%s %s", role, op)
		}
	}
	for _, op := range writes {
		assert.True(t, accessService.Allowed(user.RoleAdmin, op))
		assert.True(t, accessService.Allowed(user.RoleModerator, op))
		assert.False(t, accessService.Allowed(user.RoleUser, op))
	}
	assert.False(t, accessService.Allowed(user.Role(""), accessService.OpRead))
	assert.False(t, accessService.Allowed(user.RoleAdmin, accessService.Operation("chmod")))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want accessService.Kind
	}{
		{nil, accessService.KindOK},
		{fileService.ErrNotFound, accessService.KindNotFound},
		{fmt.Errorf("%w: object missing", fileService.ErrNotFound), accessService.KindNotFound},
		{fileService.ErrConflict, accessService.KindBadRequest},
		{fileService.ErrInvalidName, accessService.KindBadRequest},
		{accessService.ErrForbidden, accessService.KindForbidden},
		{fileService.ErrRemoteStore, accessService.KindServerError},
		{&fileService.PartialFailureError{OldKey: "a/x", NewKey: "a/y", Err: fileService.ErrConflict}, accessService.KindServerError},
		{errors.New("db down"), accessService.KindServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, accessService.Classify(tt.err), "%v", tt.err)
	}
}
