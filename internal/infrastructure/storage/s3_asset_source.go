package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	infraconfig "github.com/erp/invoicing/internal/infrastructure/config"
	"go.uber.org/zap"
)

// S3AssetSource reads the asset from an S3-compatible bucket (AWS S3, MinIO, RustFS, etc.)
type S3AssetSource struct {
	client *s3.Client
	bucket string
	key    string
	logger *zap.Logger
}

var _ AssetSource = (*S3AssetSource)(nil)

// S3AssetSourceOption is a functional option for configuring S3AssetSource
type S3AssetSourceOption func(*S3AssetSource)

// WithLogger sets a custom logger for S3AssetSource
func WithLogger(logger *zap.Logger) S3AssetSourceOption {
	return func(s *S3AssetSource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewS3AssetSource creates a new S3AssetSource from configuration.
// Without an access key the default AWS credential chain is used.
func NewS3AssetSource(cfg *infraconfig.AssetConfig, opts ...S3AssetSourceOption) (*S3AssetSource, error) {
	if cfg == nil {
		return nil, errors.New("asset configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("asset bucket is required")
	}
	if cfg.Key == "" {
		return nil, errors.New("asset key is required")
	}
	if cfg.AccessKey != "" && cfg.SecretKey == "" {
		return nil, errors.New("asset secret key is required with an access key")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint, err := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	src := &S3AssetSource{
		client: client,
		bucket: cfg.Bucket,
		key:    cfg.Key,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(src)
	}
	return src, nil
}

// normalizeEndpoint adds a scheme to a bare host. An empty endpoint selects AWS.
func normalizeEndpoint(endpoint string, useSSL bool) (string, error) {
	if endpoint == "" {
		return "", nil
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if useSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return "", fmt.Errorf("invalid asset endpoint: %w", err)
	}
	return endpoint, nil
}

// Open streams the object body. A missing object or bucket is reported as an asset-missing error.
func (s *S3AssetSource) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var noSuchBucket *types.NoSuchBucket
		if errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
			return nil, assetMissing(s.Location())
		}
		s.logger.Error("Failed to fetch invoice asset",
			zap.String("bucket", s.bucket),
			zap.String("key", s.key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get asset object: %w", err)
	}
	return out.Body, nil
}

// Location returns the s3:// URI of the asset
func (s *S3AssetSource) Location() string {
	return "s3://" + s.bucket + "/" + s.key
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3AssetSource) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating asset bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Upload replaces the asset object with the given PDF bytes
func (s *S3AssetSource) Upload(ctx context.Context, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload asset object: %w", err)
	}

	s.logger.Info("Invoice asset uploaded",
		zap.String("location", s.Location()),
		zap.Int("size", len(data)),
	)
	return nil
}
