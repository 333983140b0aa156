// Package media is the asset-host client. Images live in an S3-compatible
// bucket; the rest of the application only sees opaque {URL, AssetID}
// pairs and a destroy operation.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/jharris/campwise/app/observability/metrics"
	appconfig "github.com/jharris/campwise/config"
)

// ErrInvalidImage is returned when an uploaded filename does not carry an
// accepted image extension.
var ErrInvalidImage = errors.New("Only image files are allowed!")

// Asset identifies a stored image on the asset host.
type Asset struct {
	URL     string
	AssetID string
}

// Store is the narrow contract the handlers and services rely on.
type Store interface {
	Upload(ctx context.Context, r io.Reader, filename string) (Asset, error)
	Destroy(ctx context.Context, assetID string) error
}

var _ Store = (*S3Store)(nil)

// S3Store stores assets in an S3-compatible bucket (MinIO in development).
type S3Store struct {
	logger   *slog.Logger
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string
}

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// ValidateFilename rejects anything that is not a jpg/jpeg/png/gif by
// extension. Matches on the filename only; content sniffing is the asset
// host's problem.
func ValidateFilename(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := imageContentTypes[ext]; !ok {
		return ErrInvalidImage
	}
	return nil
}

// NewS3Store creates the asset-host client from configuration. The
// endpoint is resolved statically so MinIO and real S3 both work.
func NewS3Store(ctx context.Context, cfg *appconfig.Config, logger *slog.Logger) (*S3Store, error) {
	m := cfg.Media
	if m.AccessKey == "" || m.SecretKey == "" || m.Bucket == "" || m.Endpoint == "" {
		return nil, fmt.Errorf("media credentials (endpoint, bucket, access key, secret key) must be configured")
	}

	scheme := "http"
	if m.UseSSL {
		scheme = "https"
	}
	endpointURL := fmt.Sprintf("%s://%s", scheme, m.Endpoint)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(m.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(m.AccessKey, m.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for asset host: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpointURL)
		o.UsePathStyle = true
	})

	return &S3Store{
		logger:   logger,
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   m.Bucket,
		baseURL:  endpointURL,
	}, nil
}

// Upload validates the filename, stores the content under a fresh object
// key and returns the public URL plus the key as the asset id.
func (s *S3Store) Upload(ctx context.Context, r io.Reader, filename string) (Asset, error) {
	if err := ValidateFilename(filename); err != nil {
		return Asset{}, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	key := uuid.NewString() + ext

	start := time.Now()
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(imageContentTypes[ext]),
	})
	metrics.Get().UploadsTotal.Add(ctx, 1)
	metrics.Get().UploadDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		s.logger.ErrorContext(ctx, "Asset upload failed", slog.String("key", key), slog.Any("error", err))
		return Asset{}, fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	return Asset{
		URL:     fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key),
		AssetID: key,
	}, nil
}

// Destroy removes a stored asset by id.
func (s *S3Store) Destroy(ctx context.Context, assetID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(assetID),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Asset delete failed", slog.String("asset_id", assetID), slog.Any("error", err))
		return fmt.Errorf("failed to delete asset %s: %w", assetID, err)
	}
	return nil
}
