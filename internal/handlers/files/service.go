package files

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"marketplace/internal/errors"
	"marketplace/internal/storage"
)

type PresignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

type PresignResponse struct {
	UploadURL string            `json:"uploadUrl"`
	FormData  map[string]string `json:"fields"`
	Key       string            `json:"key"`
}

// ImageConstraint bounds what sellers may upload as a listing photo.
type ImageConstraint struct {
	MaxSize          int64
	AllowedMimeTypes []string
}

type service struct {
	storage             storage.Provider
	constraint          ImageConstraint
	uploadWindowMinutes int
}

func NewFileService(storage storage.Provider, uploadWindowMinutes int, constraint ImageConstraint) *service {
	return &service{
		storage:             storage,
		constraint:          constraint,
		uploadWindowMinutes: uploadWindowMinutes,
	}
}

var imageExtensionMappings = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// PresignUpload hands the client a short-lived POST policy for uploading a
// listing image directly to object storage, so image bytes never pass through
// this service.
func (s *service) PresignUpload(ctx context.Context, userID string, req PresignRequest) (*PresignResponse, error) {
	ext := strings.ToLower(filepath.Ext(req.Filename))
	if ext == "" {
		return nil, errors.New(errors.ErrInvalidInput, "Filename must have an extension", nil)
	}

	mimeType := req.ContentType
	if mimeType == "" {
		mimeType = imageExtensionMappings[ext]
	}
	if !slices.Contains(s.constraint.AllowedMimeTypes, mimeType) {
		return nil, errors.New(errors.ErrInvalidInput, fmt.Sprintf("File type '%s' is not allowed for listing images", mimeType), nil)
	}

	key := generateStorageKey(userID, req.Filename, ext)

	config := storage.UploadConfig{
		Bucket:      storage.BucketListingImages,
		Key:         key,
		ContentType: mimeType,
		MaxFileSize: s.constraint.MaxSize,
		Expiry:      time.Duration(s.uploadWindowMinutes) * time.Minute,
	}

	url, formData, err := s.storage.GenerateUploadURL(ctx, config)
	if err != nil {
		return nil, errors.New(errors.ErrInternal, "Failed to generate upload signature", err)
	}

	return &PresignResponse{
		UploadURL: url,
		FormData:  formData,
		Key:       key,
	}, nil
}

// Pattern: YYYY/MM/DD/userID/hash.ext
func generateStorageKey(userID, filename, ext string) string {
	now := time.Now()
	datePrefix := fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day())

	// path.Join automatically removes double slashes (//) and empty strings
	return path.Join(datePrefix, userID, generateFilenameHash(filename)+ext)
}

func generateFilenameHash(filename string) string {
	sha256Hasher := sha256.New()
	sha256Hasher.Write([]byte(filename))
	return fmt.Sprintf("%x", sha256Hasher.Sum(nil))
}
