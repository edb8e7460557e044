package fileInfo_test

import (
	"testing"
	"time"

	"file-storage-service/internal/model/fileInfo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRevisionConstructors(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	file := &fileInfo.File{ID: uuid.New(), Owner: "alice", Name: "a.txt"}

	created := fileInfo.NewCreateRevision(file, "alice", now)
	assert.Equal(t, fileInfo.RevisionCreate, created.Kind)
	assert.Equal(t, file.ID, created.FileID)
	assert.Equal(t, "alice", created.Owner)
	assert.Equal(t, "a.txt", created.NewName)
	assert.Empty(t, created.OldName)

	renamed := fileInfo.NewRenameRevision(file, "a.txt", "b.txt", "bob", now)
	assert.Equal(t, fileInfo.RevisionRename, renamed.Kind)
	assert.Equal(t, "a.txt", renamed.OldName)
	assert.Equal(t, "b.txt", renamed.NewName)
	assert.Equal(t, "bob", renamed.Actor)

	deleted := fileInfo.NewDeleteRevision(file, "alice", now)
	assert.Equal(t, fileInfo.RevisionDelete, deleted.Kind)
	assert.Equal(t, "a.txt", deleted.OldName)
	assert.Equal(t, now, deleted.CreatedAt)
}

func TestRevisionKind_Valid(t *testing.T) {
	assert.True(t, fileInfo.RevisionCreate.Valid())
	assert.True(t, fileInfo.RevisionRename.Valid())
	assert.True(t, fileInfo.RevisionDelete.Valid())
	assert.False(t, fileInfo.RevisionKind("UPDATE").Valid())
}
