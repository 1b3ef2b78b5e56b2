package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"videotube/internal/config"
	"videotube/internal/model"
)

// MediaUploader stores a local image file and returns its public location.
type MediaUploader interface {
	Upload(ctx context.Context, localPath string, kind model.MediaKind) (*model.UploadResult, error)
}

// NewMediaUploader picks the backend named by cfg.MediaProvider.
func NewMediaUploader(ctx context.Context, cfg *config.Config) (MediaUploader, error) {
	switch cfg.MediaProvider {
	case config.MediaProviderCloudinary:
		return NewCloudinaryUploader(CloudinaryConfig{
			BaseURL:   cfg.CloudinaryBaseURL,
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Timeout:   cfg.UploadTimeout,
		}), nil
	default:
		return NewS3Uploader(ctx, cfg)
	}
}

// S3Uploader uploads to an S3-compatible bucket such as Cloudflare R2.
type S3Uploader struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
}

// NewS3Uploader constructs an S3-compatible client for Cloudflare R2.
func NewS3Uploader(ctx context.Context, cfg *config.Config) (*S3Uploader, error) {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" || cfg.R2PublicURL == "" {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &S3Uploader{
		s3Client:  s3Client,
		bucket:    cfg.R2BucketName,
		publicURL: strings.TrimSuffix(cfg.R2PublicURL, "/"),
	}, nil
}

// Upload normalises the image for kind and puts it under kind's folder.
func (u *S3Uploader) Upload(ctx context.Context, localPath string, kind model.MediaKind) (*model.UploadResult, error) {
	jpegBytes, err := prepareImage(localPath, kind)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", kind, uuid.NewString(), model.ImageExt)

	_, err = u.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(jpegBytes),
		ContentType:  aws.String(model.ContentTypeJPEG),
		CacheControl: aws.String(model.ImageCacheControl),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to r2: %w", err)
	}

	return &model.UploadResult{URL: fmt.Sprintf("%s/%s", u.publicURL, key), Key: key}, nil
}

// uploadFailure maps an uploader error to the client-facing error. Rejected
// files are the caller's fault; anything else becomes fallback.
func uploadFailure(err error, fallback *model.AppError) *model.AppError {
	switch {
	case errors.Is(err, model.ErrFileTooLarge):
		return model.ErrImageTooLarge.Wrap(err)
	case errors.Is(err, model.ErrInvalidImageType):
		return model.ErrImageTypeInvalid.Wrap(err)
	}
	return fallback.Wrap(err)
}

// prepareImage loads the file with size and type checks, then crops it to
// the kind's dimensions and encodes it as JPEG.
func prepareImage(localPath string, kind model.MediaKind) ([]byte, error) {
	if localPath == "" {
		return nil, fmt.Errorf("no file to upload")
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, model.MaxImageSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > model.MaxImageSizeBytes {
		return nil, model.ErrFileTooLarge
	}

	contentType := http.DetectContentType(data[:min(len(data), 512)])
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !model.IsAllowedImageType(contentType) {
		return nil, model.ErrInvalidImageType
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	width, height := kind.Dimensions()
	resized := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(model.ImageQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}
