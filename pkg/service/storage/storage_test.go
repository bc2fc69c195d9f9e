package storage_test

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/interfaces"
	"github.com/secmon-lab/ifrs-modeler/pkg/service/storage"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/safe"
)

func runBlobStorageTest(t *testing.T, newStorage func(t *testing.T) interfaces.BlobStorage) {
	t.Helper()

	t.Run("put then get returns the same bytes", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()
		key := "uploads/" + uuid.NewString() + "/claims.xlsx"

		gt.NoError(t, s.Put(ctx, key, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", strings.NewReader("PK\x03\x04data"))).Required()

		r, err := s.Get(ctx, key)
		gt.NoError(t, err).Required()
		defer safe.Close(ctx, r)

		data, err := io.ReadAll(r)
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal("PK\x03\x04data")
	})

	t.Run("get missing key returns not found", func(t *testing.T) {
		s := newStorage(t)
		_, err := s.Get(context.Background(), "uploads/"+uuid.NewString())
		gt.Bool(t, errors.Is(err, storage.ErrNotFound)).True()
	})

	t.Run("delete removes the object", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()
		key := "uploads/" + uuid.NewString() + "/old.xls"

		gt.NoError(t, s.Put(ctx, key, "application/vnd.ms-excel", strings.NewReader("x"))).Required()
		gt.NoError(t, s.Delete(ctx, key)).Required()

		_, err := s.Get(ctx, key)
		gt.Bool(t, errors.Is(err, storage.ErrNotFound)).True()

		err = s.Delete(ctx, key)
		gt.Bool(t, errors.Is(err, storage.ErrNotFound)).True()
	})
}

func TestMemoryStorage(t *testing.T) {
	runBlobStorageTest(t, func(t *testing.T) interfaces.BlobStorage {
		return storage.NewMemory()
	})
}

func TestGCSStorage(t *testing.T) {
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("TEST_GCS_BUCKET is not set")
	}

	runBlobStorageTest(t, func(t *testing.T) interfaces.BlobStorage {
		s, err := storage.NewGCS(context.Background(), bucket, "test/"+uuid.NewString()+"/")
		gt.NoError(t, err).Required()
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestMemoryStorage_ContentType(t *testing.T) {
	s := storage.NewMemory()
	gt.NoError(t, s.Put(context.Background(), "k", "application/vnd.ms-excel", strings.NewReader("x"))).Required()

	ct, ok := s.ContentType("k")
	gt.Bool(t, ok).True()
	gt.Value(t, ct).Equal("application/vnd.ms-excel")
}
