package MinIO

import (
	"errors"
	"fmt"
	"testing"

	"file-storage-service/internal/objectStore"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	t.Run("NoSuchKey becomes ErrObjectNotFound", func(t *testing.T) {
		err := translate("get", "alice/a.txt", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404})
		assert.ErrorIs(t, err, objectStore.ErrObjectNotFound)
	})

	t.Run("wrapped NoSuchKey", func(t *testing.T) {
		wrapped := fmt.Errorf("stat: %w", minio.ErrorResponse{Code: "NoSuchKey"})
		assert.ErrorIs(t, translate("copy", "alice/a.txt", wrapped), objectStore.ErrObjectNotFound)
	})

	t.Run("other backend errors are remote errors", func(t *testing.T) {
		err := translate("copy", "alice/a.txt", minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403})
		var remote *objectStore.RemoteError
		if assert.True(t, errors.As(err, &remote)) {
			assert.Equal(t, "copy", remote.Op)
			assert.Equal(t, "alice/a.txt", remote.Key)
		}
		assert.False(t, errors.Is(err, objectStore.ErrObjectNotFound))
	})

	t.Run("transport errors are remote errors", func(t *testing.T) {
		err := translate("get", "k", errors.New("connection refused"))
		var remote *objectStore.RemoteError
		assert.True(t, errors.As(err, &remote))
	})
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "NoSuchBucket"}))
	assert.False(t, isNotFound(errors.New("boom")))
}
