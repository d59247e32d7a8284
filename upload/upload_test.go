package upload_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ecobuilt/api/upload"
)

// MockObjectClient implements upload.ObjectClient for testing
type MockObjectClient struct {
	mock.Mock
}

func (m *MockObjectClient) PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*s3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockObjectClient) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*s3.DeleteObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestStorageKey(t *testing.T) {
	t.Run("keeps the extension, lower-cased", func(t *testing.T) {
		key := upload.StorageKey("Photo.JPG")

		assert.True(t, strings.HasPrefix(key, "uploads/"))
		assert.True(t, strings.HasSuffix(key, ".jpg"))
	})

	t.Run("handles names without an extension", func(t *testing.T) {
		key := upload.StorageKey("photo")

		assert.True(t, strings.HasPrefix(key, "uploads/"))
		assert.False(t, strings.Contains(key, "."))
	})

	t.Run("keys are unique per call", func(t *testing.T) {
		assert.NotEqual(t, upload.StorageKey("a.png"), upload.StorageKey("a.png"))
	})
}

func TestStore_Put(t *testing.T) {
	cfg := upload.Config{Bucket: "test-bucket", Region: "us-east-1"}

	t.Run("stores under a fresh key with the content type", func(t *testing.T) {
		client := &MockObjectClient{}
		client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			return *in.Bucket == "test-bucket" &&
				strings.HasSuffix(*in.Key, ".png") &&
				*in.ContentType == "image/png"
		})).Return(&s3.PutObjectOutput{}, nil)

		store := upload.NewWithClient(cfg, client)

		key, err := store.Put(context.Background(), "logo.png", strings.NewReader("data"), "image/png")

		require.NoError(t, err)
		assert.NotEmpty(t, key)
		client.AssertExpectations(t)
	})

	t.Run("surfaces storage failures", func(t *testing.T) {
		client := &MockObjectClient{}
		client.On("PutObject", mock.Anything, mock.Anything).Return(nil, assert.AnError)

		store := upload.NewWithClient(cfg, client)

		key, err := store.Put(context.Background(), "logo.png", strings.NewReader("data"), "image/png")

		assert.Error(t, err)
		assert.Empty(t, key)
	})
}

func TestStore_Delete(t *testing.T) {
	cfg := upload.Config{Bucket: "test-bucket"}

	client := &MockObjectClient{}
	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return *in.Bucket == "test-bucket" && *in.Key == "uploads/gone.png"
	})).Return(&s3.DeleteObjectOutput{}, nil)

	store := upload.NewWithClient(cfg, client)

	require.NoError(t, store.Delete(context.Background(), "uploads/gone.png"))
	client.AssertExpectations(t)
}

func TestStore_URL(t *testing.T) {
	t.Run("uses the public base url when configured", func(t *testing.T) {
		store := upload.NewWithClient(upload.Config{
			Bucket:        "test-bucket",
			PublicBaseURL: "https://cdn.example.com/",
		}, nil)

		assert.Equal(t, "https://cdn.example.com/uploads/a.png", store.URL("uploads/a.png"))
	})

	t.Run("falls back to the bucket url", func(t *testing.T) {
		store := upload.NewWithClient(upload.Config{
			Bucket: "test-bucket",
			Region: "us-east-1",
		}, nil)

		assert.Equal(t,
			"https://test-bucket.s3.us-east-1.amazonaws.com/uploads/a.png",
			store.URL("uploads/a.png"))
	})

	t.Run("empty key yields an empty url", func(t *testing.T) {
		store := upload.NewWithClient(upload.Config{Bucket: "test-bucket"}, nil)
		assert.Empty(t, store.URL(""))
	})
}
