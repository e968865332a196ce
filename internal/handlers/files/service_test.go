package files

import (
	"context"
	"strings"
	"testing"
	"time"

	apperrors "marketplace/internal/errors"
	"marketplace/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	lastConfig storage.UploadConfig
}

func (f *fakeProvider) GenerateUploadURL(ctx context.Context, cfg storage.UploadConfig) (string, map[string]string, error) {
	f.lastConfig = cfg
	return "https://storage.example.com/upload", map[string]string{"policy": "signed"}, nil
}

func (f *fakeProvider) PresignGet(ctx context.Context, bucket storage.Bucket, key string, expiry time.Duration) (string, error) {
	return "", nil
}

func (f *fakeProvider) Delete(ctx context.Context, bucket storage.Bucket, key string) error {
	return nil
}

func newTestService(provider storage.Provider) *service {
	return NewFileService(provider, 15, ImageConstraint{
		MaxSize:          5 * 1024 * 1024,
		AllowedMimeTypes: []string{"image/jpeg", "image/png"},
	})
}

func TestPresignUpload_Success(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestService(provider)

	resp, err := svc.PresignUpload(context.Background(), "user-1", PresignRequest{
		Filename:    "photo.jpg",
		ContentType: "image/jpeg",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/upload", resp.UploadURL)
	assert.True(t, strings.HasSuffix(resp.Key, ".jpg"))
	assert.Contains(t, resp.Key, "user-1/")
	assert.Equal(t, storage.BucketListingImages, provider.lastConfig.Bucket)
	assert.Equal(t, 15*time.Minute, provider.lastConfig.Expiry)
}

func TestPresignUpload_InfersMimeTypeFromExtension(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestService(provider)

	_, err := svc.PresignUpload(context.Background(), "user-1", PresignRequest{
		Filename: "photo.png",
	})

	require.NoError(t, err)
	assert.Equal(t, "image/png", provider.lastConfig.ContentType)
}

func TestPresignUpload_RejectsNonImage(t *testing.T) {
	svc := newTestService(&fakeProvider{})

	_, err := svc.PresignUpload(context.Background(), "user-1", PresignRequest{
		Filename:    "model.stl",
		ContentType: "model/stl",
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidInput, apperrors.Code(err))
}

func TestPresignUpload_RejectsMissingExtension(t *testing.T) {
	svc := newTestService(&fakeProvider{})

	_, err := svc.PresignUpload(context.Background(), "user-1", PresignRequest{
		Filename: "photo",
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidInput, apperrors.Code(err))
}
