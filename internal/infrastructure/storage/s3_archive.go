package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	appcollection "github.com/hawaiibiz/intel/internal/application/collection"
	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/infrastructure/config"
	"github.com/hawaiibiz/intel/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// objectAPI is the part of the S3 client the archive uses
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3Archive stores raw candidate batches in any S3-compatible store
// (AWS S3, MinIO, RustFS).
type S3Archive struct {
	client objectAPI
	bucket string
	logger *zap.Logger
}

var _ appcollection.Archiver = (*S3Archive)(nil)

// S3ArchiveOption configures an S3Archive
type S3ArchiveOption func(*S3Archive)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) S3ArchiveOption {
	return func(s *S3Archive) { s.logger = logger }
}

// NewS3Archive creates an archive from configuration. Credentials fall back
// to the default AWS chain when no static keys are configured.
func NewS3Archive(ctx context.Context, cfg *config.StorageConfig, opts ...S3ArchiveOption) (*S3Archive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return nil, errors.New("storage access key id and secret access key must be set together")
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	if endpoint != "" {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	a := &S3Archive{client: client, bucket: cfg.Bucket, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3Archive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating archive bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive implements collection.Archiver
func (s *S3Archive) Archive(ctx context.Context, runID uuid.UUID, adapter string, candidates []business.Candidate) error {
	key, err := Key(runID, adapter)
	if err != nil {
		return err
	}
	ctx, span := telemetry.StartClientSpan(ctx, "archive.put",
		telemetry.SpanAttrRunID, runID.String(),
		telemetry.SpanAttrAdapter, adapter,
		telemetry.SpanAttrCandidates, len(candidates),
		"archive.key", key,
	)
	defer span.End()

	body, err := encodeLines(candidates)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(ContentType),
		Metadata: map[string]string{
			"run-id":     runID.String(),
			"adapter":    adapter,
			"candidates": fmt.Sprint(len(candidates)),
		},
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}
	s.logger.Debug("Archived raw candidates",
		zap.String("key", key), zap.Int("candidates", len(candidates)), zap.Int("bytes", len(body)))
	return nil
}

// Bucket returns the bucket name
func (s *S3Archive) Bucket() string {
	return s.bucket
}
